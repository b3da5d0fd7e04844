package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

const (
	RulePriceOutlier   = "PRICE_OUTLIER"
	RuleTransitOutlier = "TRANSIT_TIME_OUTLIER"
	RuleFreightOutlier = "FREIGHT_COST_OUTLIER"
	RulePaymentOutlier = "PAYMENT_BEHAVIOR_OUTLIER"

	// values past the fence by more than this fraction of the bound
	// are graded HIGH instead of MEDIUM
	severeDeviation = 0.5
)

// Settings contains the tunables for the outlier fence
type Settings struct {
	// IQRMultiplier widens the fence around [Q1, Q3] (default: 1.5)
	IQRMultiplier float64 `mapstructure:"iqr_multiplier"`
	// MinGroupSize is the smallest group a baseline is computed for (default: 4)
	MinGroupSize int `mapstructure:"min_group_size"`
}

// DefaultSettings returns the standard Tukey fence configuration
func DefaultSettings() Settings {
	return Settings{
		IQRMultiplier: 1.5,
		MinGroupSize:  4,
	}
}

// metric binds one numeric field to its grouping key and rule identity.
type metric struct {
	ruleID   string
	category domain.Category
	field    string
	groupKey func(domain.Shipment) string
	value    func(domain.Shipment) float64
}

var metrics = []metric{
	{
		ruleID:   RulePriceOutlier,
		category: domain.CategoryFinancial,
		field:    "unit_price",
		groupKey: func(s domain.Shipment) string { return s.ProductCategory },
		value:    func(s domain.Shipment) float64 { return s.UnitPrice },
	},
	{
		ruleID:   RuleTransitOutlier,
		category: domain.CategoryLogistics,
		field:    "transit_time_days",
		groupKey: func(s domain.Shipment) string { return s.ProductCategory },
		value:    func(s domain.Shipment) float64 { return float64(s.TransitTimeDays) },
	},
	{
		ruleID:   RuleFreightOutlier,
		category: domain.CategoryLogistics,
		field:    "freight_cost",
		groupKey: func(s domain.Shipment) string { return s.ProductCategory },
		value:    func(s domain.Shipment) float64 { return s.FreightCost },
	},
	{
		ruleID:   RulePaymentOutlier,
		category: domain.CategoryBehavioral,
		field:    "days_to_payment",
		groupKey: func(s domain.Shipment) string { return s.BuyerID },
		value:    func(s domain.Shipment) float64 { return float64(s.DaysToPayment) },
	},
}

// Detector flags records whose numeric fields fall outside the IQR fence
// of their peer group. Every baseline comes from the batch itself; there
// is no external reference data.
type Detector struct {
	settings Settings
}

func NewDetector(settings Settings) *Detector {
	return &Detector{settings: settings}
}

// Detect computes a fence per metric and group and flags every record
// outside it. Groups too small or too flat to baseline come back as
// *InsufficiencyError values; their records are not judged for that metric.
func (d *Detector) Detect(batch []domain.Shipment) ([]domain.Finding, []error) {
	var findings []domain.Finding
	var skipped []error
	for _, m := range metrics {
		f, errs := d.detectMetric(m, batch)
		findings = append(findings, f...)
		skipped = append(skipped, errs...)
	}
	return findings, skipped
}

func (d *Detector) detectMetric(m metric, batch []domain.Shipment) ([]domain.Finding, []error) {
	groups := map[string][]int{}
	for i := range batch {
		key := m.groupKey(batch[i])
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], i)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var findings []domain.Finding
	var skipped []error
	for _, key := range keys {
		members := groups[key]
		if len(members) < d.settings.MinGroupSize {
			skipped = append(skipped, &InsufficiencyError{
				Field:  m.field,
				Group:  key,
				Size:   len(members),
				Reason: fmt.Sprintf("fewer than %d records", d.settings.MinGroupSize),
			})
			continue
		}

		values := make([]float64, len(members))
		for i, idx := range members {
			values[i] = m.value(batch[idx])
		}

		bounds := NewBounds(values, d.settings.IQRMultiplier)
		if bounds.IQR() == 0 {
			skipped = append(skipped, &InsufficiencyError{
				Field:  m.field,
				Group:  key,
				Size:   len(members),
				Reason: "zero interquartile range",
			})
			continue
		}

		for i, idx := range members {
			v := values[i]
			if !bounds.Outside(v) {
				continue
			}
			findings = append(findings, domain.Finding{
				ShipmentID: batch[idx].ID,
				Layer:      domain.LayerStats,
				Category:   m.category,
				RuleID:     m.ruleID,
				Severity:   outlierSeverity(v, bounds),
				Reason: fmt.Sprintf("%s %.2f outside [%.2f, %.2f] for group %q (n=%d)",
					m.field, v, bounds.Lower, bounds.Upper, key, len(members)),
			})
		}
	}
	return findings, skipped
}

// outlierSeverity grades by how far past the violated bound the value sits.
func outlierSeverity(v float64, b Bounds) domain.Severity {
	bound := b.Lower
	if v > b.Upper {
		bound = b.Upper
	}
	if bound == 0 {
		return domain.SeverityHigh
	}
	if math.Abs(v-bound)/math.Abs(bound) > severeDeviation {
		return domain.SeverityHigh
	}
	return domain.SeverityMedium
}
