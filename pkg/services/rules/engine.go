package rules

import (
	"fmt"
	"math"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

const (
	RulePriceMismatch         = "PRICE_MISMATCH"
	RuleZeroFOBDeclaration    = "ZERO_FOB_DECLARATION"
	RuleExcessiveInsurance    = "EXCESSIVE_INSURANCE"
	RuleIncotermFreight       = "INCOTERM_FREIGHT_MISMATCH"
	RuleIncotermEXW           = "INCOTERM_EXW_ERROR"
	RuleInvalidHSCode         = "INVALID_HS_CODE_FORMAT"
	RuleInvalidDrawback       = "INVALID_DRAWBACK_CLAIM"
	RuleFOBInsurance          = "FOB_INSURANCE_MISMATCH"
	RulePaymentInconsistent   = "PAYMENT_STATUS_INCONSISTENT"
	drawbackPenaltyMultiplier = 1.5
)

// Settings contains configurable thresholds for the deterministic checks
type Settings struct {
	// PriceTolerance is the allowed relative gap between quantity x unit_price
	// and the declared FOB value (default: 0.02)
	PriceTolerance float64 `mapstructure:"price_tolerance"`
	// InsuranceCeiling is the insurance value allowed as a fraction of the
	// declared FOB value (default: 0.02)
	InsuranceCeiling float64 `mapstructure:"insurance_ceiling"`
}

// DefaultSettings returns the default thresholds for the rule battery
func DefaultSettings() Settings {
	return Settings{
		PriceTolerance:   0.02,
		InsuranceCeiling: 0.02,
	}
}

// Descriptor documents one deterministic check for introspection.
type Descriptor struct {
	RuleID   string
	Category domain.Category
	Severity domain.Severity
	Summary  string
}

// Engine applies a fixed battery of deterministic checks to single records.
// Every check is a pure function of one shipment: no cross-record state,
// no external calls.
type Engine struct {
	settings Settings
}

func NewEngine(settings Settings) *Engine {
	return &Engine{settings: settings}
}

type check func(domain.Shipment) (*domain.Finding, error)

// Evaluate runs every check against one record. Findings come back in the
// fixed check order. Checks a record cannot support return a
// *domain.DataQualityError instead; the record stays in the batch.
func (e *Engine) Evaluate(s domain.Shipment) ([]domain.Finding, []error) {
	checks := []check{
		e.checkPriceConsistency,
		e.checkExcessiveInsurance,
		e.checkIncotermFreight,
		e.checkIncotermEXW,
		e.checkHSCodeFormat,
		e.checkDrawbackClaim,
		e.checkFOBInsurance,
		e.checkPaymentConsistency,
	}

	var findings []domain.Finding
	var skipped []error
	for _, c := range checks {
		f, err := c(s)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		if f != nil {
			findings = append(findings, *f)
		}
	}
	return findings, skipped
}

// Descriptors returns the rule table: every rule id the engine can emit
// with its fixed category and severity.
func (e *Engine) Descriptors() []Descriptor {
	return []Descriptor{
		{RulePriceMismatch, domain.CategoryFinancial, domain.SeverityHigh,
			"declared FOB value differs from quantity x unit_price beyond tolerance"},
		{RuleZeroFOBDeclaration, domain.CategoryCompliance, domain.SeverityHigh,
			"zero declared FOB value on a shipment with nonzero computed value"},
		{RuleExcessiveInsurance, domain.CategoryFinancial, domain.SeverityLow,
			"insurance value exceeds the allowed fraction of FOB value"},
		{RuleIncotermFreight, domain.CategoryCompliance, domain.SeverityHigh,
			"CIF/CFR shipment declares zero freight cost"},
		{RuleIncotermEXW, domain.CategoryCompliance, domain.SeverityHigh,
			"EXW shipment carries seller-paid freight or insurance"},
		{RuleInvalidHSCode, domain.CategoryCompliance, domain.SeverityHigh,
			"HS code is not a 6, 8 or 10 digit sequence"},
		{RuleInvalidDrawback, domain.CategoryCompliance, domain.SeverityHigh,
			"drawback claimed on a shipment with rejected customs status"},
		{RuleFOBInsurance, domain.CategoryCompliance, domain.SeverityMedium,
			"FOB shipment declares seller-paid insurance"},
		{RulePaymentInconsistent, domain.CategoryFinancial, domain.SeverityMedium,
			"pending payment with a nonzero days-to-payment interval"},
	}
}

func (e *Engine) checkPriceConsistency(s domain.Shipment) (*domain.Finding, error) {
	if s.Quantity <= 0 {
		return nil, &domain.DataQualityError{ShipmentID: s.ID, Field: "quantity", Reason: "must be positive"}
	}
	if s.UnitPrice < 0 {
		return nil, &domain.DataQualityError{ShipmentID: s.ID, Field: "unit_price", Reason: "negative"}
	}
	if s.TotalFOB < 0 {
		return nil, &domain.DataQualityError{ShipmentID: s.ID, Field: "total_fob", Reason: "negative"}
	}

	expected := s.UnitPrice * float64(s.Quantity)
	if s.TotalFOB == 0 {
		if expected == 0 {
			return nil, nil
		}
		return &domain.Finding{
			ShipmentID: s.ID,
			Layer:      domain.LayerRules,
			Category:   domain.CategoryCompliance,
			RuleID:     RuleZeroFOBDeclaration,
			Severity:   domain.SeverityHigh,
			CostImpact: expected,
			Reason: fmt.Sprintf("declared FOB value is 0 while quantity x unit price computes to %.2f",
				expected),
		}, nil
	}

	diff := math.Abs(expected - s.TotalFOB)
	if diff > e.settings.PriceTolerance*s.TotalFOB {
		return &domain.Finding{
			ShipmentID: s.ID,
			Layer:      domain.LayerRules,
			Category:   domain.CategoryFinancial,
			RuleID:     RulePriceMismatch,
			Severity:   domain.SeverityHigh,
			CostImpact: diff,
			Reason: fmt.Sprintf("declared FOB %.2f differs from computed %.2f by %.1f%%",
				s.TotalFOB, expected, diff/s.TotalFOB*100),
		}, nil
	}
	return nil, nil
}

func (e *Engine) checkExcessiveInsurance(s domain.Shipment) (*domain.Finding, error) {
	if s.InsuranceValue < 0 {
		return nil, &domain.DataQualityError{ShipmentID: s.ID, Field: "insurance_value", Reason: "negative"}
	}
	ceiling := e.settings.InsuranceCeiling * s.TotalFOB
	if s.InsuranceValue > ceiling {
		return &domain.Finding{
			ShipmentID: s.ID,
			Layer:      domain.LayerRules,
			Category:   domain.CategoryFinancial,
			RuleID:     RuleExcessiveInsurance,
			Severity:   domain.SeverityLow,
			CostImpact: s.InsuranceValue - ceiling,
			Reason: fmt.Sprintf("insurance %.2f exceeds %.1f%% of FOB value %.2f",
				s.InsuranceValue, e.settings.InsuranceCeiling*100, s.TotalFOB),
		}, nil
	}
	return nil, nil
}

func (e *Engine) checkIncotermFreight(s domain.Shipment) (*domain.Finding, error) {
	if err := requireIncoterm(s); err != nil {
		return nil, err
	}
	if s.FreightCost < 0 {
		return nil, &domain.DataQualityError{ShipmentID: s.ID, Field: "freight_cost", Reason: "negative"}
	}
	if (s.Incoterm == domain.IncotermCIF || s.Incoterm == domain.IncotermCFR) && s.FreightCost == 0 {
		return &domain.Finding{
			ShipmentID: s.ID,
			Layer:      domain.LayerRules,
			Category:   domain.CategoryCompliance,
			RuleID:     RuleIncotermFreight,
			Severity:   domain.SeverityHigh,
			Reason:     fmt.Sprintf("%s shipment declares zero freight cost", s.Incoterm),
		}, nil
	}
	return nil, nil
}

func (e *Engine) checkIncotermEXW(s domain.Shipment) (*domain.Finding, error) {
	if err := requireIncoterm(s); err != nil {
		return nil, err
	}
	if s.Incoterm == domain.IncotermEXW && (s.FreightCost > 0 || s.InsuranceValue > 0) {
		return &domain.Finding{
			ShipmentID: s.ID,
			Layer:      domain.LayerRules,
			Category:   domain.CategoryCompliance,
			RuleID:     RuleIncotermEXW,
			Severity:   domain.SeverityHigh,
			CostImpact: s.FreightCost + s.InsuranceValue,
			Reason: fmt.Sprintf("EXW shipment carries seller-paid freight %.2f and insurance %.2f",
				s.FreightCost, s.InsuranceValue),
		}, nil
	}
	return nil, nil
}

func (e *Engine) checkHSCodeFormat(s domain.Shipment) (*domain.Finding, error) {
	if domain.ValidHSCode(s.HSCode) {
		return nil, nil
	}
	return &domain.Finding{
		ShipmentID: s.ID,
		Layer:      domain.LayerRules,
		Category:   domain.CategoryCompliance,
		RuleID:     RuleInvalidHSCode,
		Severity:   domain.SeverityHigh,
		Reason:     fmt.Sprintf("HS code %q is not a 6, 8 or 10 digit sequence", s.HSCode),
	}, nil
}

func (e *Engine) checkDrawbackClaim(s domain.Shipment) (*domain.Finding, error) {
	if s.DrawbackAmount < 0 {
		return nil, &domain.DataQualityError{ShipmentID: s.ID, Field: "drawback_amount", Reason: "negative"}
	}
	if s.DrawbackAmount == 0 {
		return nil, nil
	}
	if s.CustomsStatus == "" {
		return nil, &domain.DataQualityError{ShipmentID: s.ID, Field: "customs_status", Reason: "missing with drawback claimed"}
	}
	if s.CustomsStatus == domain.CustomsRejected {
		return &domain.Finding{
			ShipmentID: s.ID,
			Layer:      domain.LayerRules,
			Category:   domain.CategoryCompliance,
			RuleID:     RuleInvalidDrawback,
			Severity:   domain.SeverityHigh,
			CostImpact: drawbackPenaltyMultiplier * s.DrawbackAmount,
			Reason: fmt.Sprintf("drawback claim %.2f on a shipment rejected by customs",
				s.DrawbackAmount),
		}, nil
	}
	return nil, nil
}

func (e *Engine) checkFOBInsurance(s domain.Shipment) (*domain.Finding, error) {
	if err := requireIncoterm(s); err != nil {
		return nil, err
	}
	if s.Incoterm == domain.IncotermFOB && s.InsuranceValue > 0 {
		return &domain.Finding{
			ShipmentID: s.ID,
			Layer:      domain.LayerRules,
			Category:   domain.CategoryCompliance,
			RuleID:     RuleFOBInsurance,
			Severity:   domain.SeverityMedium,
			CostImpact: s.InsuranceValue,
			Reason: fmt.Sprintf("FOB shipment declares seller-paid insurance %.2f; the buyer insures under FOB",
				s.InsuranceValue),
		}, nil
	}
	return nil, nil
}

func (e *Engine) checkPaymentConsistency(s domain.Shipment) (*domain.Finding, error) {
	if s.DaysToPayment < 0 {
		return nil, &domain.DataQualityError{ShipmentID: s.ID, Field: "days_to_payment", Reason: "negative"}
	}
	if s.PaymentStatus == "" {
		return nil, &domain.DataQualityError{ShipmentID: s.ID, Field: "payment_status", Reason: "missing"}
	}
	if s.PaymentStatus == domain.PaymentPending && s.DaysToPayment > 0 {
		return &domain.Finding{
			ShipmentID: s.ID,
			Layer:      domain.LayerRules,
			Category:   domain.CategoryFinancial,
			RuleID:     RulePaymentInconsistent,
			Severity:   domain.SeverityMedium,
			Reason: fmt.Sprintf("payment marked pending but %d days to payment recorded",
				s.DaysToPayment),
		}, nil
	}
	return nil, nil
}

func requireIncoterm(s domain.Shipment) error {
	if s.Incoterm == "" {
		return &domain.DataQualityError{ShipmentID: s.ID, Field: "incoterm", Reason: "missing"}
	}
	return nil
}
