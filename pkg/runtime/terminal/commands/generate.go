package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/trade-sentinel/pkg/services/ingest"
	"github.com/de-tools/trade-sentinel/pkg/services/synth"
)

type GenerateCmd struct {
	count     int
	anomalies int
	seed      int64
	outPath   string
	truthPath string
}

func NewGenerateCmd() *cobra.Command {
	gc := &GenerateCmd{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic shipment batch with planted anomalies",
		RunE:  gc.run,
	}

	defaults := synth.DefaultSettings()
	cmd.Flags().IntVar(&gc.count, "count", defaults.Count, "Number of shipments to generate")
	cmd.Flags().IntVar(&gc.anomalies, "anomalies", defaults.Anomalies, "Number of shipments with planted anomalies")
	cmd.Flags().Int64Var(&gc.seed, "seed", defaults.Seed, "Random seed")
	cmd.Flags().StringVar(&gc.outPath, "out", "", "Path for the shipment CSV")
	cmd.Flags().StringVar(&gc.truthPath, "truth", "", "Path for the ground-truth CSV")

	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("truth")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, _ []string) error {
	generator := synth.NewGenerator(synth.Settings{
		Count:     gc.count,
		Anomalies: gc.anomalies,
		Seed:      gc.seed,
	})

	batch, truth, err := generator.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate batch: %w", err)
	}

	if err := ingest.SaveShipments(gc.outPath, batch); err != nil {
		return fmt.Errorf("failed to write shipments: %w", err)
	}
	if err := ingest.SaveTruth(gc.truthPath, truth); err != nil {
		return fmt.Errorf("failed to write ground truth: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d shipments (%d with planted anomalies) to %s, truth to %s\n",
		len(batch), gc.anomalies, gc.outPath, gc.truthPath)
	return nil
}
