package finding

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/trade-sentinel/pkg/models/store"
	"github.com/de-tools/trade-sentinel/pkg/store/duckdb"
)

// Store is an append-only log of detection findings keyed by run id.
type Store interface {
	Add(ctx context.Context, records []store.FindingRecord) error
	ListByRun(ctx context.Context, runID string) ([]store.FindingRecord, error)
}

type findingStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &findingStore{
		db: db,
	}, nil
}

func (s *findingStore) Add(ctx context.Context, records []store.FindingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT INTO findings (
			run_id, shipment_id, layer, category, rule_id,
			severity, cost_impact, reason, created_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?
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
			record.RunID,
			record.ShipmentID,
			record.Layer,
			record.Category,
			record.RuleID,
			record.Severity,
			record.CostImpact,
			record.Reason,
			record.CreatedAt,
		)

		if err != nil {
			return fmt.Errorf("insert finding: %w", err)
		}
	}

	return nil
}

func (s *findingStore) ListByRun(ctx context.Context, runID string) ([]store.FindingRecord, error) {
	query := `
		SELECT run_id, shipment_id, layer, category, rule_id,
			severity, cost_impact, reason, created_at
		FROM findings
		WHERE run_id = ?
		ORDER BY shipment_id, layer, rule_id
	`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	records := make([]store.FindingRecord, 0)
	for rows.Next() {
		var r store.FindingRecord
		if err := rows.Scan(
			&r.RunID,
			&r.ShipmentID,
			&r.Layer,
			&r.Category,
			&r.RuleID,
			&r.Severity,
			&r.CostImpact,
			&r.Reason,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
