package api

import "time"

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Finding struct {
	ShipmentID string   `json:"shipment_id"`
	Layer      int      `json:"layer"`
	Category   string   `json:"category"`
	RuleID     string   `json:"rule_id"`
	Severity   Severity `json:"severity"`
	CostImpact float64  `json:"estimated_cost_impact,omitempty"`
	Reason     string   `json:"reason"`
}

type SkippedChecks struct {
	RuleChecks     int `json:"rule_checks"`
	StatGroups     int `json:"stat_groups"`
	ValidatorCalls int `json:"validator_calls"`
}

type DetectionReport struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Records   int           `json:"records"`
	Findings  []Finding     `json:"findings"`
	Skipped   SkippedChecks `json:"skipped_checks"`
}

// RuleDescriptor documents one deterministic check for introspection.
type RuleDescriptor struct {
	RuleID   string   `json:"rule_id"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Summary  string   `json:"summary"`
}

type DetectRequest struct {
	Shipments []Shipment `json:"shipments"`
}
