package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/trade-sentinel/pkg/adapters"
	"github.com/de-tools/trade-sentinel/pkg/models/api"
	"github.com/de-tools/trade-sentinel/pkg/runtime/terminal/export"
	"github.com/de-tools/trade-sentinel/pkg/services/ingest"
	"github.com/de-tools/trade-sentinel/pkg/services/scoring"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic"
)

type ScoreCmd struct {
	inputPath     string
	truthPath     string
	configPath    string
	backend       string
	backendConfig string
	dbPath        string
	reportPath    string

	classifiers semantic.Registry
	reporter    *export.Reporter
}

func NewScoreCmd(classifiers semantic.Registry, reporter *export.Reporter) *cobra.Command {
	sc := &ScoreCmd{
		classifiers: classifiers,
		reporter:    reporter,
	}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Run detection and score it against a planted-anomaly ground truth",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.inputPath, "input", "", "Path to the shipment CSV")
	cmd.Flags().StringVar(&sc.truthPath, "truth", "", "Path to the ground-truth CSV")
	cmd.Flags().StringVar(&sc.configPath, "config", "", "Path to the detection settings file")
	cmd.Flags().StringVar(&sc.backend, "backend", "", "Semantic classifier backend (omit to skip the semantic layer)")
	cmd.Flags().StringVar(&sc.backendConfig, "backend-config", "", "Path to the classifier backend config")
	cmd.Flags().StringVar(&sc.dbPath, "db", "", "DuckDB file for persisting runs and caching verdicts")
	cmd.Flags().StringVar(&sc.reportPath, "report", "", "Write the detection and accuracy reports to this JSON file")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("truth")

	return cmd
}

func (sc *ScoreCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	shipments, quality, err := ingest.LoadShipments(sc.inputPath)
	if err != nil {
		return fmt.Errorf("failed to load shipments: %w", err)
	}
	if len(quality) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d malformed rows in %s\n", len(quality), sc.inputPath)
	}

	truth, err := ingest.LoadTruth(sc.truthPath)
	if err != nil {
		return fmt.Errorf("failed to load ground truth: %w", err)
	}

	s, err := newSession(sc.classifiers, sessionOptions{
		configPath:    sc.configPath,
		backend:       sc.backend,
		backendConfig: sc.backendConfig,
		dbPath:        sc.dbPath,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.pipeline.Detect(ctx, shipments)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if err := s.persist(ctx, report, shipments); err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}

	accuracy, err := scoring.NewScorer().Score(ctx, report.Findings, truth, shipments)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	if sc.reportPath != "" {
		payload := api.ScoreResponse{
			Detection: adapters.MapDetectionReportDomainToApi(*report),
			Accuracy:  adapters.MapAccuracyReportDomainToApi(*accuracy),
		}
		if err := writeJSONReport(sc.reportPath, payload); err != nil {
			return err
		}
	}

	if err := sc.reporter.HandleDetection(report); err != nil {
		return err
	}
	return sc.reporter.HandleAccuracy(accuracy)
}
