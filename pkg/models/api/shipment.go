package api

type Shipment struct {
	ID                 string  `json:"id"`
	Incoterm           string  `json:"incoterm"`
	UnitPrice          float64 `json:"unit_price"`
	Quantity           int     `json:"quantity"`
	TotalFOB           float64 `json:"total_fob"`
	FreightCost        float64 `json:"freight_cost"`
	InsuranceValue     float64 `json:"insurance_value"`
	HSCode             string  `json:"hs_code"`
	ProductDescription string  `json:"product_description"`
	TransitTimeDays    int     `json:"transit_time_days"`
	DaysToPayment      int     `json:"days_to_payment"`
	BuyerID            string  `json:"buyer_id"`
	ProductCategory    string  `json:"product_category"`
	DrawbackAmount     float64 `json:"drawback_amount,omitempty"`
	CustomsStatus      string  `json:"customs_status,omitempty"`
	PaymentStatus      string  `json:"payment_status,omitempty"`
}
