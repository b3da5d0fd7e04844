package domain

import (
	"fmt"
	"strings"
)

type Incoterm string

const (
	IncotermEXW Incoterm = "EXW"
	IncotermFOB Incoterm = "FOB"
	IncotermCIF Incoterm = "CIF"
	IncotermCFR Incoterm = "CFR"
	IncotermDDP Incoterm = "DDP"
)

type CustomsStatus string

const (
	CustomsCleared  CustomsStatus = "cleared"
	CustomsPending  CustomsStatus = "pending"
	CustomsRejected CustomsStatus = "rejected"
)

type PaymentStatus string

const (
	PaymentReceived PaymentStatus = "received"
	PaymentPending  PaymentStatus = "pending"
	PaymentOverdue  PaymentStatus = "overdue"
)

// Shipment is one export transaction. Records are immutable once ingested
// and owned by the batch for the lifetime of a pipeline run.
type Shipment struct {
	ID                 string
	Incoterm           Incoterm
	UnitPrice          float64
	Quantity           int
	TotalFOB           float64
	FreightCost        float64
	InsuranceValue     float64
	HSCode             string
	ProductDescription string
	TransitTimeDays    int
	DaysToPayment      int
	BuyerID            string
	ProductCategory    string
	DrawbackAmount     float64
	CustomsStatus      CustomsStatus
	PaymentStatus      PaymentStatus
}

// ParseIncoterm validates an incoterm label, accepting any casing. The empty
// string passes: a missing incoterm surfaces later as a data-quality skip on
// the checks that need one.
func ParseIncoterm(s string) (Incoterm, error) {
	v := Incoterm(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case "", IncotermEXW, IncotermFOB, IncotermCIF, IncotermCFR, IncotermDDP:
		return v, nil
	}
	return "", fmt.Errorf("unknown incoterm %q", s)
}

// ParseCustomsStatus validates a customs status label, accepting any casing.
// The empty string passes.
func ParseCustomsStatus(s string) (CustomsStatus, error) {
	v := CustomsStatus(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "", CustomsCleared, CustomsPending, CustomsRejected:
		return v, nil
	}
	return "", fmt.Errorf("unknown customs status %q", s)
}

// ParsePaymentStatus validates a payment status label, accepting any casing.
// The empty string passes.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	v := PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "", PaymentReceived, PaymentPending, PaymentOverdue:
		return v, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// ValidHSCode reports whether code is a 6, 8 or 10 digit sequence.
func ValidHSCode(code string) bool {
	switch len(code) {
	case 6, 8, 10:
	default:
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
