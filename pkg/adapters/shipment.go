package adapters

import (
	"github.com/de-tools/trade-sentinel/pkg/models/api"
	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/de-tools/trade-sentinel/pkg/models/store"
)

func MapShipmentApiToDomain(s api.Shipment) domain.Shipment {
	return domain.Shipment{
		ID:                 s.ID,
		Incoterm:           domain.Incoterm(s.Incoterm),
		UnitPrice:          s.UnitPrice,
		Quantity:           s.Quantity,
		TotalFOB:           s.TotalFOB,
		FreightCost:        s.FreightCost,
		InsuranceValue:     s.InsuranceValue,
		HSCode:             s.HSCode,
		ProductDescription: s.ProductDescription,
		TransitTimeDays:    s.TransitTimeDays,
		DaysToPayment:      s.DaysToPayment,
		BuyerID:            s.BuyerID,
		ProductCategory:    s.ProductCategory,
		DrawbackAmount:     s.DrawbackAmount,
		CustomsStatus:      domain.CustomsStatus(s.CustomsStatus),
		PaymentStatus:      domain.PaymentStatus(s.PaymentStatus),
	}
}

func MapShipmentDomainToStore(s domain.Shipment) store.ShipmentRecord {
	return store.ShipmentRecord{
		ID:                 s.ID,
		Incoterm:           string(s.Incoterm),
		UnitPrice:          s.UnitPrice,
		Quantity:           s.Quantity,
		TotalFOB:           s.TotalFOB,
		FreightCost:        s.FreightCost,
		InsuranceValue:     s.InsuranceValue,
		HSCode:             s.HSCode,
		ProductDescription: s.ProductDescription,
		TransitTimeDays:    s.TransitTimeDays,
		DaysToPayment:      s.DaysToPayment,
		BuyerID:            s.BuyerID,
		ProductCategory:    s.ProductCategory,
		DrawbackAmount:     s.DrawbackAmount,
		CustomsStatus:      string(s.CustomsStatus),
		PaymentStatus:      string(s.PaymentStatus),
	}
}

func MapShipmentStoreToDomain(s store.ShipmentRecord) domain.Shipment {
	return domain.Shipment{
		ID:                 s.ID,
		Incoterm:           domain.Incoterm(s.Incoterm),
		UnitPrice:          s.UnitPrice,
		Quantity:           s.Quantity,
		TotalFOB:           s.TotalFOB,
		FreightCost:        s.FreightCost,
		InsuranceValue:     s.InsuranceValue,
		HSCode:             s.HSCode,
		ProductDescription: s.ProductDescription,
		TransitTimeDays:    s.TransitTimeDays,
		DaysToPayment:      s.DaysToPayment,
		BuyerID:            s.BuyerID,
		ProductCategory:    s.ProductCategory,
		DrawbackAmount:     s.DrawbackAmount,
		CustomsStatus:      domain.CustomsStatus(s.CustomsStatus),
		PaymentStatus:      domain.PaymentStatus(s.PaymentStatus),
	}
}
