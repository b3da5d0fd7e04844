package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/trade-sentinel/pkg/adapters"
	"github.com/de-tools/trade-sentinel/pkg/runtime/terminal/export"
	"github.com/de-tools/trade-sentinel/pkg/services/ingest"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic"
)

type DetectCmd struct {
	inputPath     string
	configPath    string
	backend       string
	backendConfig string
	dbPath        string
	reportPath    string

	classifiers semantic.Registry
	reporter    *export.Reporter
}

func NewDetectCmd(classifiers semantic.Registry, reporter *export.Reporter) *cobra.Command {
	dc := &DetectCmd{
		classifiers: classifiers,
		reporter:    reporter,
	}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Screen a shipment CSV for anomalies",
		RunE:  dc.run,
	}

	cmd.Flags().StringVar(&dc.inputPath, "input", "", "Path to the shipment CSV")
	cmd.Flags().StringVar(&dc.configPath, "config", "", "Path to the detection settings file")
	cmd.Flags().StringVar(&dc.backend, "backend", "", "Semantic classifier backend (omit to skip the semantic layer)")
	cmd.Flags().StringVar(&dc.backendConfig, "backend-config", "", "Path to the classifier backend config")
	cmd.Flags().StringVar(&dc.dbPath, "db", "", "DuckDB file for persisting runs and caching verdicts")
	cmd.Flags().StringVar(&dc.reportPath, "report", "", "Write the detection report to this JSON file")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func (dc *DetectCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	shipments, quality, err := ingest.LoadShipments(dc.inputPath)
	if err != nil {
		return fmt.Errorf("failed to load shipments: %w", err)
	}
	if len(quality) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d malformed rows in %s\n", len(quality), dc.inputPath)
	}

	s, err := newSession(dc.classifiers, sessionOptions{
		configPath:    dc.configPath,
		backend:       dc.backend,
		backendConfig: dc.backendConfig,
		dbPath:        dc.dbPath,
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

	if dc.reportPath != "" {
		if err := writeJSONReport(dc.reportPath, adapters.MapDetectionReportDomainToApi(*report)); err != nil {
			return err
		}
	}

	return dc.reporter.HandleDetection(report)
}
