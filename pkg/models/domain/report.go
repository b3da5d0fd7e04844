package domain

import "time"

// SkippedChecks counts checks that could not run, so a caller can
// distinguish "no anomalies" from "checks were suppressed".
type SkippedChecks struct {
	RuleChecks     int // layer 1 checks skipped on data-quality grounds
	StatGroups     int // layer 2 field/group evaluations skipped as insufficient
	ValidatorCalls int // layer 3 calls resolved fail-safe without a verdict
}

func (s SkippedChecks) Total() int {
	return s.RuleChecks + s.StatGroups + s.ValidatorCalls
}

// DetectionReport is the pipeline's sole output: the merged finding set
// plus the skip counts, ordered by shipment id with layer order preserved
// within a shipment.
type DetectionReport struct {
	RunID     string
	StartedAt time.Time
	Records   int
	Findings  []Finding
	Skipped   SkippedChecks
}
