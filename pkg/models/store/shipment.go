package store

type ShipmentRecord struct {
	ID                 string
	Incoterm           string
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
	CustomsStatus      string
	PaymentStatus      string
}
