package terminal

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/trade-sentinel/pkg/runtime/terminal/commands"
	"github.com/de-tools/trade-sentinel/pkg/runtime/terminal/export"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic"
)

// CLI represents the command-line interface
type CLI struct {
	classifiers semantic.Registry
	reporter    *export.Reporter
	rootCmd     *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Classifiers semantic.Registry
	Output      io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		classifiers: opts.Classifiers,
		reporter:    export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteContext runs the CLI with the given context, which carries the
// process logger down into the detection pipeline.
func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Export shipment anomaly screening tool",
	}

	cmd.AddCommand(commands.NewDetectCmd(cli.classifiers, cli.reporter))
	cmd.AddCommand(commands.NewScoreCmd(cli.classifiers, cli.reporter))
	cmd.AddCommand(commands.NewGenerateCmd())

	return cmd
}
