package shipment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/trade-sentinel/pkg/models/store"
	"github.com/de-tools/trade-sentinel/pkg/store/duckdb"
)

// Store persists shipment batches. Add replaces rows that share an id, so
// re-ingesting the same export file keeps the latest declaration.
type Store interface {
	Add(ctx context.Context, records []store.ShipmentRecord) error
	List(ctx context.Context) ([]store.ShipmentRecord, error)
}

type shipmentStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &shipmentStore{
		db: db,
	}, nil
}

func (s *shipmentStore) Add(ctx context.Context, records []store.ShipmentRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT OR REPLACE INTO shipments (
			id, incoterm, unit_price, quantity, total_fob, freight_cost,
			insurance_value, hs_code, product_description, transit_time_days,
			days_to_payment, buyer_id, product_category, drawback_amount,
			customs_status, payment_status
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)`

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = s.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}

	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx,
			record.ID,
			record.Incoterm,
			record.UnitPrice,
			record.Quantity,
			record.TotalFOB,
			record.FreightCost,
			record.InsuranceValue,
			record.HSCode,
			record.ProductDescription,
			record.TransitTimeDays,
			record.DaysToPayment,
			record.BuyerID,
			record.ProductCategory,
			record.DrawbackAmount,
			record.CustomsStatus,
			record.PaymentStatus,
		)

		if err != nil {
			return fmt.Errorf("insert shipment %s: %w", record.ID, err)
		}
	}

	return nil
}

func (s *shipmentStore) List(ctx context.Context) ([]store.ShipmentRecord, error) {
	query := `
		SELECT id, incoterm, unit_price, quantity, total_fob, freight_cost,
			insurance_value, hs_code, product_description, transit_time_days,
			days_to_payment, buyer_id, product_category, drawback_amount,
			customs_status, payment_status
		FROM shipments
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query shipments: %w", err)
	}
	defer rows.Close()
	return scanShipmentRows(rows)
}

func scanShipmentRows(rows *sql.Rows) ([]store.ShipmentRecord, error) {
	records := make([]store.ShipmentRecord, 0)
	for rows.Next() {
		var r store.ShipmentRecord
		if err := rows.Scan(
			&r.ID,
			&r.Incoterm,
			&r.UnitPrice,
			&r.Quantity,
			&r.TotalFOB,
			&r.FreightCost,
			&r.InsuranceValue,
			&r.HSCode,
			&r.ProductDescription,
			&r.TransitTimeDays,
			&r.DaysToPayment,
			&r.BuyerID,
			&r.ProductCategory,
			&r.DrawbackAmount,
			&r.CustomsStatus,
			&r.PaymentStatus,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
