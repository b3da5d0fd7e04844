package stats

import (
	"errors"
	"fmt"
	"testing"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupShipment(id, category, buyer string, price float64) domain.Shipment {
	return domain.Shipment{
		ID:              id,
		UnitPrice:       price,
		ProductCategory: category,
		BuyerID:         buyer,
		TransitTimeDays: 15,
		FreightCost:     100,
		DaysToPayment:   30,
	}
}

func findingsByRule(findings []domain.Finding, ruleID string) []domain.Finding {
	var out []domain.Finding
	for _, f := range findings {
		if f.RuleID == ruleID {
			out = append(out, f)
		}
	}
	return out
}

func insufficiencies(errs []error, field string) []*InsufficiencyError {
	var out []*InsufficiencyError
	for _, err := range errs {
		var ie *InsufficiencyError
		if errors.As(err, &ie) && ie.Field == field {
			out = append(out, ie)
		}
	}
	return out
}

func TestDetector_Detect_PriceOutlier(t *testing.T) {
	d := NewDetector(DefaultSettings())

	tests := []struct {
		name     string
		price    float64
		severity domain.Severity
	}{
		// fence for 98..103 is [96.5, 106.5]; 500 is 3.7x past the
		// upper bound, 110 only 3% past it
		{"extreme value graded high", 500, domain.SeverityHigh},
		{"mild value graded medium", 110, domain.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := []domain.Shipment{
				groupShipment("S1", "steel", "B1", 98),
				groupShipment("S2", "steel", "B2", 100),
				groupShipment("S3", "steel", "B3", 101),
				groupShipment("S4", "steel", "B4", 102),
				groupShipment("S5", "steel", "B5", 103),
				groupShipment("S6", "steel", "B6", tt.price),
			}

			findings, _ := d.Detect(batch)

			flagged := findingsByRule(findings, RulePriceOutlier)
			require.Len(t, flagged, 1)
			assert.Equal(t, "S6", flagged[0].ShipmentID)
			assert.Equal(t, domain.LayerStats, flagged[0].Layer)
			assert.Equal(t, domain.CategoryFinancial, flagged[0].Category)
			assert.Equal(t, tt.severity, flagged[0].Severity)
		})
	}
}

func TestDetector_Detect_SmallGroupNeverTriggers(t *testing.T) {
	d := NewDetector(DefaultSettings())

	batch := []domain.Shipment{
		groupShipment("S1", "steel", "B1", 100),
		groupShipment("S2", "steel", "B2", 100),
		groupShipment("S3", "steel", "B3", 100000),
	}

	findings, errs := d.Detect(batch)

	assert.Empty(t, findingsByRule(findings, RulePriceOutlier))

	skips := insufficiencies(errs, "unit_price")
	require.Len(t, skips, 1)
	assert.Equal(t, "steel", skips[0].Group)
	assert.Equal(t, 3, skips[0].Size)
	assert.Contains(t, skips[0].Reason, "fewer than 4")
}

func TestDetector_Detect_ZeroIQRGroupNeverTriggers(t *testing.T) {
	d := NewDetector(DefaultSettings())

	// Q1 and Q3 both land on 100, so the spread is zero even though one
	// value is wildly off
	batch := []domain.Shipment{
		groupShipment("S1", "steel", "B1", 100),
		groupShipment("S2", "steel", "B2", 100),
		groupShipment("S3", "steel", "B3", 100),
		groupShipment("S4", "steel", "B4", 100),
		groupShipment("S5", "steel", "B5", 500),
	}

	findings, errs := d.Detect(batch)

	assert.Empty(t, findingsByRule(findings, RulePriceOutlier))

	skips := insufficiencies(errs, "unit_price")
	require.Len(t, skips, 1)
	assert.Equal(t, "zero interquartile range", skips[0].Reason)
}

func TestDetector_Detect_TransitOutlier(t *testing.T) {
	d := NewDetector(DefaultSettings())

	batch := make([]domain.Shipment, 0, 5)
	for i, days := range []int{10, 11, 12, 13, 40} {
		s := groupShipment(fmt.Sprintf("S%d", i+1), "machinery", fmt.Sprintf("B%d", i+1), 100+float64(i))
		s.TransitTimeDays = days
		batch = append(batch, s)
	}

	findings, _ := d.Detect(batch)

	flagged := findingsByRule(findings, RuleTransitOutlier)
	require.Len(t, flagged, 1)
	assert.Equal(t, "S5", flagged[0].ShipmentID)
	assert.Equal(t, domain.CategoryLogistics, flagged[0].Category)
	assert.Equal(t, domain.SeverityHigh, flagged[0].Severity)
}

func TestDetector_Detect_PaymentBehaviorPerBuyer(t *testing.T) {
	d := NewDetector(DefaultSettings())

	var batch []domain.Shipment
	for i, days := range []int{29, 30, 31, 32, 90} {
		s := groupShipment(fmt.Sprintf("A%d", i+1), fmt.Sprintf("cat-a%d", i), "B1", 100)
		s.DaysToPayment = days
		batch = append(batch, s)
	}
	// two records are not enough history to judge this buyer
	for i, days := range []int{500, 600} {
		s := groupShipment(fmt.Sprintf("N%d", i+1), fmt.Sprintf("cat-n%d", i), "B2", 100)
		s.DaysToPayment = days
		batch = append(batch, s)
	}

	findings, errs := d.Detect(batch)

	flagged := findingsByRule(findings, RulePaymentOutlier)
	require.Len(t, flagged, 1)
	assert.Equal(t, "A5", flagged[0].ShipmentID)
	assert.Equal(t, domain.CategoryBehavioral, flagged[0].Category)

	skips := insufficiencies(errs, "days_to_payment")
	require.Len(t, skips, 1)
	assert.Equal(t, "B2", skips[0].Group)
}

func TestDetector_Detect_EmptyGroupKeyExcluded(t *testing.T) {
	d := NewDetector(DefaultSettings())

	batch := []domain.Shipment{
		groupShipment("S1", "", "B1", 1),
		groupShipment("S2", "", "B2", 100000),
		groupShipment("S3", "", "B3", 3),
		groupShipment("S4", "", "B4", 4),
		groupShipment("S5", "", "B5", 5),
	}

	findings, errs := d.Detect(batch)

	assert.Empty(t, findingsByRule(findings, RulePriceOutlier))
	assert.Empty(t, insufficiencies(errs, "unit_price"))
}

func TestDetector_Detect_EmptyBatch(t *testing.T) {
	d := NewDetector(DefaultSettings())

	findings, errs := d.Detect(nil)

	assert.Empty(t, findings)
	assert.Empty(t, errs)
}
