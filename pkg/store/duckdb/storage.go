package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ShipmentTableSchema = `
	CREATE TABLE IF NOT EXISTS shipments (
		id VARCHAR NOT NULL PRIMARY KEY,
		incoterm VARCHAR,
		unit_price DOUBLE,
		quantity INTEGER,
		total_fob DOUBLE,
		freight_cost DOUBLE,
		insurance_value DOUBLE,
		hs_code VARCHAR,
		product_description VARCHAR,
		transit_time_days INTEGER,
		days_to_payment INTEGER,
		buyer_id VARCHAR,
		product_category VARCHAR,
		drawback_amount DOUBLE,
		customs_status VARCHAR,
		payment_status VARCHAR
	);
`

const FindingTableSchema = `
	CREATE TABLE IF NOT EXISTS findings (
		run_id VARCHAR NOT NULL,
		shipment_id VARCHAR NOT NULL,
		layer INTEGER NOT NULL,
		category VARCHAR NOT NULL,
		rule_id VARCHAR NOT NULL,
		severity VARCHAR NOT NULL,
		cost_impact DOUBLE,
		reason VARCHAR,
		created_at TIMESTAMP NOT NULL
	);
`

const VerdictTableSchema = `
	CREATE TABLE IF NOT EXISTS verdicts (
		cache_key VARCHAR NOT NULL PRIMARY KEY,
		is_mismatch BOOLEAN NOT NULL,
		reason VARCHAR,
		confidence DOUBLE NOT NULL,
		checked_at TIMESTAMP NOT NULL
	);
`

var bootQueries = []string{
	ShipmentTableSchema,
	FindingTableSchema,
	VerdictTableSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
