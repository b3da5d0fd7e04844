package store

import "time"

type FindingRecord struct {
	RunID      string
	ShipmentID string
	Layer      int
	Category   string
	RuleID     string
	Severity   string
	CostImpact float64
	Reason     string
	CreatedAt  time.Time
}
