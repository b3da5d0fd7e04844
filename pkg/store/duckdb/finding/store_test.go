package finding

import (
	"context"
	"database/sql"
	"testing"
	"time"

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

func findingRecord(runID, shipmentID, ruleID string, layer int) store.FindingRecord {
	return store.FindingRecord{
		RunID:      runID,
		ShipmentID: shipmentID,
		Layer:      layer,
		Category:   "FINANCIAL",
		RuleID:     ruleID,
		Severity:   "high",
		CostImpact: 500,
		Reason:     "declared FOB off by 50%",
		CreatedAt:  time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestFindingStore_AddAndListByRun(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Add(ctx, []store.FindingRecord{
		findingRecord("run-001", "SHP-0002", "PRICE_OUTLIER", 2),
		findingRecord("run-001", "SHP-0001", "PRICE_MISMATCH", 1),
		findingRecord("run-002", "SHP-0001", "PRICE_MISMATCH", 1),
	}))

	listed, err := f.store.ListByRun(ctx, "run-001")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "SHP-0001", listed[0].ShipmentID)
	assert.Equal(t, "SHP-0002", listed[1].ShipmentID)
	assert.Equal(t, findingRecord("run-001", "SHP-0001", "PRICE_MISMATCH", 1), listed[0])

	listed, err = f.store.ListByRun(ctx, "run-003")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestFindingStore_AddEmpty(t *testing.T) {
	f := setupFixture(t)
	require.NoError(t, f.store.Add(context.Background(), nil))
}

func TestFindingStore_AddRollsBackWithTransaction(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	tx, err := f.db.Begin()
	require.NoError(t, err)

	err = f.store.Add(duckdb.WithTransaction(ctx, tx), []store.FindingRecord{
		findingRecord("run-001", "SHP-0001", "PRICE_MISMATCH", 1),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	listed, err := f.store.ListByRun(ctx, "run-001")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestNewStore_NilDB(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}
