package ingest

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shipmentsHeader = "shipment_id,incoterm,unit_price,quantity,total_fob,freight_cost,insurance_value," +
	"hs_code,product_description,transit_time_days,days_to_payment,buyer_id,product_category," +
	"drawback_amount,customs_status,payment_status"

func TestReadShipments(t *testing.T) {
	input := shipmentsHeader + "\n" +
		"SHP-1,CIF,100,10,1000,120,15,84099199,diesel engine parts,18,45,BUY-1,machinery,0,cleared,received\n" +
		"SHP-2,fob,50.5,2,101,0,0,61091000,cotton t-shirts,20,30,BUY-2,textiles,250,pending,pending\n"

	shipments, skipped, err := ReadShipments(strings.NewReader(input))

	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Len(t, shipments, 2)

	first := shipments[0]
	assert.Equal(t, "SHP-1", first.ID)
	assert.Equal(t, domain.IncotermCIF, first.Incoterm)
	assert.InDelta(t, 100.0, first.UnitPrice, 1e-9)
	assert.Equal(t, 10, first.Quantity)
	assert.InDelta(t, 1000.0, first.TotalFOB, 1e-9)
	assert.Equal(t, "84099199", first.HSCode)
	assert.Equal(t, "diesel engine parts", first.ProductDescription)
	assert.Equal(t, domain.CustomsCleared, first.CustomsStatus)
	assert.Equal(t, domain.PaymentReceived, first.PaymentStatus)

	// enums are case-insensitive on the way in
	second := shipments[1]
	assert.Equal(t, domain.IncotermFOB, second.Incoterm)
	assert.InDelta(t, 250.0, second.DrawbackAmount, 1e-9)
}

func TestReadShipments_BadRowsSkippedBatchLoads(t *testing.T) {
	input := shipmentsHeader + "\n" +
		"SHP-1,CIF,100,10,1000,120,15,84099199,parts,18,45,BUY-1,machinery,0,cleared,received\n" +
		"SHP-2,CIF,not-a-price,10,1000,120,15,84099199,parts,18,45,BUY-1,machinery,0,cleared,received\n" +
		"SHP-3,XYZ,100,10,1000,120,15,84099199,parts,18,45,BUY-1,machinery,0,cleared,received\n" +
		",CIF,100,10,1000,120,15,84099199,parts,18,45,BUY-1,machinery,0,cleared,received\n" +
		"SHP-5,CIF,100,ten,1000,120,15,84099199,parts,18,45,BUY-1,machinery,0,cleared,received\n" +
		"SHP-6,CIF,100,10,1000,120,15,84099199,parts,18,45,BUY-1,machinery,0,cleared,received\n"

	shipments, skipped, err := ReadShipments(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, shipments, 2)
	assert.Equal(t, "SHP-1", shipments[0].ID)
	assert.Equal(t, "SHP-6", shipments[1].ID)

	require.Len(t, skipped, 4)
	fields := make([]string, 0, len(skipped))
	for _, e := range skipped {
		var dq *domain.DataQualityError
		require.ErrorAs(t, e, &dq)
		fields = append(fields, dq.Field)
	}
	assert.ElementsMatch(t, []string{"unit_price", "incoterm", "shipment_id", "quantity"}, fields)
}

func TestReadShipments_ShortRowSkipped(t *testing.T) {
	input := shipmentsHeader + "\n" +
		"SHP-1,CIF,100\n" +
		"SHP-2,CIF,100,10,1000,120,15,84099199,parts,18,45,BUY-1,machinery,0,cleared,received\n"

	shipments, skipped, err := ReadShipments(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Equal(t, "SHP-2", shipments[0].ID)
	require.Len(t, skipped, 1)
}

func TestReadShipments_MissingColumnIsFatal(t *testing.T) {
	input := "shipment_id,incoterm\nSHP-1,CIF\n"

	_, _, err := ReadShipments(strings.NewReader(input))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "unit_price")
}

func TestReadShipments_EmptyInputIsFatal(t *testing.T) {
	_, _, err := ReadShipments(strings.NewReader(""))
	assert.Error(t, err)
}

func TestShipments_WriteReadRoundTrip(t *testing.T) {
	batch := []domain.Shipment{
		{
			ID: "SHP-1", Incoterm: domain.IncotermEXW, UnitPrice: 12.75, Quantity: 40,
			TotalFOB: 510, FreightCost: 0, InsuranceValue: 0, HSCode: "84099199",
			ProductDescription: "engine parts, assorted", TransitTimeDays: 12,
			DaysToPayment: 30, BuyerID: "BUY-7", ProductCategory: "machinery",
			DrawbackAmount: 25.5, CustomsStatus: domain.CustomsPending,
			PaymentStatus: domain.PaymentOverdue,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteShipments(&buf, batch))

	loaded, skipped, err := ReadShipments(&buf)
	require.NoError(t, err)
	require.Empty(t, skipped)
	assert.Equal(t, batch, loaded)
}

func TestReadTruth(t *testing.T) {
	input := "shipment_id,category\nSHP-1,FINANCIAL\nSHP-2,classification\n"

	truth, err := ReadTruth(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, truth, 2)
	assert.Equal(t, domain.PlantedAnomaly{ShipmentID: "SHP-1", Category: domain.CategoryFinancial}, truth[0])
	assert.Equal(t, domain.PlantedAnomaly{ShipmentID: "SHP-2", Category: domain.CategoryClassification}, truth[1])
}

func TestReadTruth_BadCategoryIsFatal(t *testing.T) {
	input := "shipment_id,category\nSHP-1,SUSPICIOUS\n"

	_, err := ReadTruth(strings.NewReader(input))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestReadTruth_EmptyShipmentIDIsFatal(t *testing.T) {
	input := "shipment_id,category\n,FINANCIAL\n"

	_, err := ReadTruth(strings.NewReader(input))
	assert.Error(t, err)
}

func TestLoadShipments_FileMissing(t *testing.T) {
	_, _, err := LoadShipments(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestSaveAndLoadTruth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truth.csv")
	truth := []domain.PlantedAnomaly{
		{ShipmentID: "SHP-1", Category: domain.CategoryBehavioral},
		{ShipmentID: "SHP-2", Category: domain.CategoryLogistics},
	}

	require.NoError(t, SaveTruth(path, truth))

	loaded, err := LoadTruth(path)
	require.NoError(t, err)
	assert.Equal(t, truth, loaded)
}
