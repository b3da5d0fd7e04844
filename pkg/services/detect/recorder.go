package detect

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/trade-sentinel/pkg/adapters"
	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/de-tools/trade-sentinel/pkg/models/store"
	"github.com/de-tools/trade-sentinel/pkg/store/duckdb"
	findingstore "github.com/de-tools/trade-sentinel/pkg/store/duckdb/finding"
	shipmentstore "github.com/de-tools/trade-sentinel/pkg/store/duckdb/shipment"
)

// Recorder runs a pipeline and writes each run's batch and findings to the
// shipment and finding stores in a single transaction.
type Recorder struct {
	pipeline  *Pipeline
	db        *sql.DB
	shipments shipmentstore.Store
	findings  findingstore.Store
}

func NewRecorder(pipeline *Pipeline, db *sql.DB) (*Recorder, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline is nil")
	}

	shipments, err := shipmentstore.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create shipment store: %w", err)
	}
	findings, err := findingstore.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create finding store: %w", err)
	}

	return &Recorder{
		pipeline:  pipeline,
		db:        db,
		shipments: shipments,
		findings:  findings,
	}, nil
}

// Detect runs the pipeline and records the outcome. A storage failure does
// not void the detection result; it is logged and the report returned.
func (r *Recorder) Detect(ctx context.Context, batch []domain.Shipment) (*domain.DetectionReport, error) {
	report, err := r.pipeline.Detect(ctx, batch)
	if err != nil {
		return nil, err
	}

	if err := r.Record(ctx, report, batch); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("run_id", report.RunID).
			Msg("failed to record detection run")
	}

	return report, nil
}

// Record writes the batch and the run's findings; either both land or
// neither does.
func (r *Recorder) Record(ctx context.Context, report *domain.DetectionReport, batch []domain.Shipment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	txCtx := duckdb.WithTransaction(ctx, tx)

	shipmentRecords := make([]store.ShipmentRecord, 0, len(batch))
	for _, s := range batch {
		shipmentRecords = append(shipmentRecords, adapters.MapShipmentDomainToStore(s))
	}

	createdAt := time.Now().UTC()
	findingRecords := make([]store.FindingRecord, 0, len(report.Findings))
	for _, f := range report.Findings {
		findingRecords = append(findingRecords, adapters.MapFindingDomainToStore(report.RunID, f, createdAt))
	}

	if err := r.shipments.Add(txCtx, shipmentRecords); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := r.findings.Add(txCtx, findingRecords); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
