package shipment

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/trade-sentinel/pkg/models/store"
	"github.com/de-tools/trade-sentinel/pkg/store/duckdb"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: s,
	}
}

func shipmentRecord(id string, price float64) store.ShipmentRecord {
	return store.ShipmentRecord{
		ID:                 id,
		Incoterm:           "CIF",
		UnitPrice:          price,
		Quantity:           10,
		TotalFOB:           price * 10,
		FreightCost:        120,
		InsuranceValue:     15,
		HSCode:             "84099199",
		ProductDescription: "diesel engine parts",
		TransitTimeDays:    21,
		DaysToPayment:      30,
		BuyerID:            "BUY-01",
		ProductCategory:    "machinery",
		CustomsStatus:      "cleared",
		PaymentStatus:      "received",
	}
}

func TestShipmentStore_Add(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	t.Run("success - add records", func(t *testing.T) {
		err := f.store.Add(ctx, []store.ShipmentRecord{
			shipmentRecord("SHP-0001", 100),
			shipmentRecord("SHP-0002", 250),
		})
		require.NoError(t, err)

		var count int
		err = f.db.QueryRow("SELECT COUNT(*) FROM shipments").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("success - empty records", func(t *testing.T) {
		err := f.store.Add(ctx, nil)
		require.NoError(t, err)
	})

	t.Run("success - re-ingest keeps latest declaration", func(t *testing.T) {
		err := f.store.Add(ctx, []store.ShipmentRecord{shipmentRecord("SHP-0001", 175)})
		require.NoError(t, err)

		var price float64
		err = f.db.QueryRow("SELECT unit_price FROM shipments WHERE id = ?", "SHP-0001").Scan(&price)
		require.NoError(t, err)
		assert.Equal(t, 175.0, price)

		var count int
		err = f.db.QueryRow("SELECT COUNT(*) FROM shipments WHERE id = ?", "SHP-0001").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestShipmentStore_List(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	records := []store.ShipmentRecord{
		shipmentRecord("SHP-0002", 250),
		shipmentRecord("SHP-0001", 100),
	}
	require.NoError(t, f.store.Add(ctx, records))

	listed, err := f.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "SHP-0001", listed[0].ID)
	assert.Equal(t, "SHP-0002", listed[1].ID)
	assert.Equal(t, shipmentRecord("SHP-0001", 100), listed[0])
}

func TestShipmentStore_AddRollsBackWithTransaction(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	tx, err := f.db.Begin()
	require.NoError(t, err)

	err = f.store.Add(duckdb.WithTransaction(ctx, tx), []store.ShipmentRecord{
		shipmentRecord("SHP-0009", 90),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	var count int
	err = f.db.QueryRow("SELECT COUNT(*) FROM shipments").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNewStore_NilDB(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}
