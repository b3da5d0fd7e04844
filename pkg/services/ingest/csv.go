package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

// shipmentColumns is the required CSV layout, also used by the writers.
var shipmentColumns = []string{
	"shipment_id", "incoterm", "unit_price", "quantity", "total_fob",
	"freight_cost", "insurance_value", "hs_code", "product_description",
	"transit_time_days", "days_to_payment", "buyer_id", "product_category",
	"drawback_amount", "customs_status", "payment_status",
}

var truthColumns = []string{"shipment_id", "category"}

// LoadShipments reads a shipment batch from a CSV file. Rows that fail to
// parse come back as *domain.DataQualityError values and are skipped; the
// rest of the batch still loads. An unreadable file or a broken header is
// fatal.
func LoadShipments(path string) ([]domain.Shipment, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open shipments file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadShipments(f)
}

func ReadShipments(r io.Reader) ([]domain.Shipment, []error, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read shipments header: %w", err)
	}
	index, err := indexColumns(header, shipmentColumns)
	if err != nil {
		return nil, nil, err
	}

	var shipments []domain.Shipment
	var skipped []error
	record := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		record++
		if err != nil {
			skipped = append(skipped, &domain.DataQualityError{
				Field:  "row",
				Reason: fmt.Sprintf("record %d: %v", record, err),
			})
			continue
		}
		s, rowErr := parseShipment(index, row)
		if rowErr != nil {
			skipped = append(skipped, rowErr)
			continue
		}
		shipments = append(shipments, s)
	}
	return shipments, skipped, nil
}

// LoadTruth reads the planted-anomaly ground truth. Truth files are small
// and feed scoring directly, so any malformed row is fatal.
func LoadTruth(path string) ([]domain.PlantedAnomaly, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open truth file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadTruth(f)
}

func ReadTruth(r io.Reader) ([]domain.PlantedAnomaly, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read truth header: %w", err)
	}
	index, err := indexColumns(header, truthColumns)
	if err != nil {
		return nil, err
	}

	var truth []domain.PlantedAnomaly
	record := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		record++
		if err != nil {
			return nil, fmt.Errorf("truth record %d: %w", record, err)
		}

		id := strings.TrimSpace(row[index["shipment_id"]])
		if id == "" {
			return nil, fmt.Errorf("truth record %d: empty shipment_id", record)
		}
		category, err := domain.ParseCategory(row[index["category"]])
		if err != nil {
			return nil, fmt.Errorf("truth record %d: %w", record, err)
		}
		truth = append(truth, domain.PlantedAnomaly{ShipmentID: id, Category: category})
	}
	return truth, nil
}

// SaveShipments writes the batch in the column layout LoadShipments expects.
func SaveShipments(path string, shipments []domain.Shipment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create shipments file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return WriteShipments(f, shipments)
}

func WriteShipments(w io.Writer, shipments []domain.Shipment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(shipmentColumns); err != nil {
		return fmt.Errorf("write shipments header: %w", err)
	}
	for _, s := range shipments {
		row := []string{
			s.ID,
			string(s.Incoterm),
			formatFloat(s.UnitPrice),
			strconv.Itoa(s.Quantity),
			formatFloat(s.TotalFOB),
			formatFloat(s.FreightCost),
			formatFloat(s.InsuranceValue),
			s.HSCode,
			s.ProductDescription,
			strconv.Itoa(s.TransitTimeDays),
			strconv.Itoa(s.DaysToPayment),
			s.BuyerID,
			s.ProductCategory,
			formatFloat(s.DrawbackAmount),
			string(s.CustomsStatus),
			string(s.PaymentStatus),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write shipment %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveTruth writes the ground truth in the layout LoadTruth expects.
func SaveTruth(path string, truth []domain.PlantedAnomaly) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create truth file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return WriteTruth(f, truth)
}

func WriteTruth(w io.Writer, truth []domain.PlantedAnomaly) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(truthColumns); err != nil {
		return fmt.Errorf("write truth header: %w", err)
	}
	for _, a := range truth {
		if err := cw.Write([]string{a.ShipmentID, string(a.Category)}); err != nil {
			return fmt.Errorf("write truth row for %s: %w", a.ShipmentID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func indexColumns(header, required []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func parseShipment(index map[string]int, row []string) (domain.Shipment, error) {
	get := func(col string) string {
		return strings.TrimSpace(row[index[col]])
	}

	id := get("shipment_id")
	if id == "" {
		return domain.Shipment{}, &domain.DataQualityError{Field: "shipment_id", Reason: "empty"}
	}
	fail := func(field, reason string) (domain.Shipment, error) {
		return domain.Shipment{}, &domain.DataQualityError{ShipmentID: id, Field: field, Reason: reason}
	}

	incoterm, err := domain.ParseIncoterm(get("incoterm"))
	if err != nil {
		return fail("incoterm", err.Error())
	}
	customsStatus, err := domain.ParseCustomsStatus(get("customs_status"))
	if err != nil {
		return fail("customs_status", err.Error())
	}
	paymentStatus, err := domain.ParsePaymentStatus(get("payment_status"))
	if err != nil {
		return fail("payment_status", err.Error())
	}

	floats := make(map[string]float64, 5)
	for _, col := range []string{"unit_price", "total_fob", "freight_cost", "insurance_value", "drawback_amount"} {
		v, err := strconv.ParseFloat(get(col), 64)
		if err != nil {
			return fail(col, "not a number")
		}
		floats[col] = v
	}

	ints := make(map[string]int, 3)
	for _, col := range []string{"quantity", "transit_time_days", "days_to_payment"} {
		v, err := strconv.Atoi(get(col))
		if err != nil {
			return fail(col, "not an integer")
		}
		ints[col] = v
	}

	return domain.Shipment{
		ID:                 id,
		Incoterm:           incoterm,
		UnitPrice:          floats["unit_price"],
		Quantity:           ints["quantity"],
		TotalFOB:           floats["total_fob"],
		FreightCost:        floats["freight_cost"],
		InsuranceValue:     floats["insurance_value"],
		HSCode:             get("hs_code"),
		ProductDescription: get("product_description"),
		TransitTimeDays:    ints["transit_time_days"],
		DaysToPayment:      ints["days_to_payment"],
		BuyerID:            get("buyer_id"),
		ProductCategory:    get("product_category"),
		DrawbackAmount:     floats["drawback_amount"],
		CustomsStatus:      customsStatus,
		PaymentStatus:      paymentStatus,
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
