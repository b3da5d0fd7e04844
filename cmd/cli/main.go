package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/de-tools/trade-sentinel/pkg/runtime/terminal"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic/gemini"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic/httpapi"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()

	classifiers := semantic.NewRegistry()
	for name, factory := range map[string]semantic.ClassifierFactory{
		"gemini":  gemini.Factory,
		"httpapi": httpapi.Factory,
	} {
		if err := classifiers.Register(name, factory); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	cli := terminal.NewCLI(terminal.Options{
		Classifiers: classifiers,
		Output:      os.Stdout,
	})

	if err := cli.ExecuteContext(logger.WithContext(context.Background())); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
