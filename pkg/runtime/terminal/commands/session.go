package commands

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/de-tools/trade-sentinel/pkg/services/detect"
	"github.com/de-tools/trade-sentinel/pkg/services/rules"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic"
	"github.com/de-tools/trade-sentinel/pkg/services/stats"
	"github.com/de-tools/trade-sentinel/pkg/store/duckdb"
	duckdbverdict "github.com/de-tools/trade-sentinel/pkg/store/duckdb/verdict"
	memoryverdict "github.com/de-tools/trade-sentinel/pkg/store/verdict"
)

type sessionOptions struct {
	configPath    string
	backend       string
	backendConfig string
	dbPath        string
}

// session holds the assembled pipeline plus the optional duckdb-backed
// recorder for one command invocation. Without --db the verdict cache lives
// in memory and nothing is persisted.
type session struct {
	pipeline *detect.Pipeline
	recorder *detect.Recorder
	db       *sql.DB
}

func newSession(classifiers semantic.Registry, opts sessionOptions) (*session, error) {
	cfg := detect.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := detect.LoadConfig(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load detection config: %w", err)
		}
		cfg = *loaded
	}

	s := &session{}

	var verdicts semantic.VerdictStore
	if opts.dbPath != "" {
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: opts.dbPath})
		if err != nil {
			return nil, fmt.Errorf("failed to open duckdb at %s: %w", opts.dbPath, err)
		}
		s.db = db

		dv, err := duckdbverdict.NewStore(db)
		if err != nil {
			s.Close()
			return nil, err
		}
		verdicts = dv
	} else {
		verdicts = memoryverdict.NewStore()
	}

	var validator detect.SemanticValidator
	if opts.backend != "" {
		classifier, err := classifiers.Create(opts.backend, opts.backendConfig)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create classifier %q (registered: %s): %w",
				opts.backend, strings.Join(classifiers.ListBackends(), ", "), err)
		}
		validator = semantic.NewValidator(classifier, verdicts, cfg.Semantic)
	}

	s.pipeline = detect.NewPipeline(
		rules.NewEngine(cfg.Rules),
		stats.NewDetector(cfg.Stats),
		validator,
	)

	if s.db != nil {
		recorder, err := detect.NewRecorder(s.pipeline, s.db)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.recorder = recorder
	}

	return s, nil
}

func (s *session) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *session) persist(ctx context.Context, report *domain.DetectionReport, batch []domain.Shipment) error {
	if s.recorder == nil {
		return nil
	}
	return s.recorder.Record(ctx, report, batch)
}

func writeJSONReport(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
