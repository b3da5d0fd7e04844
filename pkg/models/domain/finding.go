package domain

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

type Category string

const (
	CategoryFinancial      Category = "FINANCIAL"
	CategoryCompliance     Category = "COMPLIANCE"
	CategoryLogistics      Category = "LOGISTICS"
	CategoryBehavioral     Category = "BEHAVIORAL"
	CategoryClassification Category = "CLASSIFICATION"
)

// Categories lists every finding category in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryFinancial,
		CategoryCompliance,
		CategoryLogistics,
		CategoryBehavioral,
		CategoryClassification,
	}
}

// ParseCategory validates a category label, accepting any casing.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Layer int

const (
	LayerRules    Layer = 1
	LayerStats    Layer = 2
	LayerSemantic Layer = 3
)

// Finding is one detection result. Created by exactly one detector and
// never mutated after creation.
type Finding struct {
	ShipmentID string
	Layer      Layer
	Category   Category
	RuleID     string
	Severity   Severity
	CostImpact float64 // estimated, 0 when not applicable
	Reason     string
}
