package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/trade-sentinel/pkg/server"
	"github.com/de-tools/trade-sentinel/pkg/services/detect"
	"github.com/de-tools/trade-sentinel/pkg/services/rules"
	"github.com/de-tools/trade-sentinel/pkg/services/scoring"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic/gemini"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic/httpapi"
	"github.com/de-tools/trade-sentinel/pkg/services/stats"
	"github.com/de-tools/trade-sentinel/pkg/store/duckdb"
	duckdbverdict "github.com/de-tools/trade-sentinel/pkg/store/duckdb/verdict"
	redisverdict "github.com/de-tools/trade-sentinel/pkg/store/redis"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the export anomaly screening server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the detection settings file (built-in defaults apply when omitted)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := detect.DefaultConfig()
	if cfgPath != "" {
		loaded, err := detect.LoadConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load detection config: %w", err)
		}
		cfg = *loaded
		logger.Info().Msgf("Detection settings found at `%s` successfully loaded.", cfgPath)
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "trade-sentinel.db"
	}
	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: dbPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	var verdicts semantic.VerdictStore
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisStore, err := redisverdict.NewStore(addr, os.Getenv("REDIS_PASSWORD"), 0)
		if err != nil {
			return fmt.Errorf("failed to create redis verdict store: %w", err)
		}
		verdicts = redisStore
		logger.Info().Msgf("verdict cache backed by redis at `%s`", addr)
	} else {
		duckStore, err := duckdbverdict.NewStore(db)
		if err != nil {
			return fmt.Errorf("failed to create verdict store: %w", err)
		}
		verdicts = duckStore
	}

	var validator detect.SemanticValidator
	if backend := os.Getenv("CLASSIFIER_BACKEND"); backend != "" {
		classifiers := semantic.NewRegistry()
		for name, factory := range map[string]semantic.ClassifierFactory{
			"gemini":  gemini.Factory,
			"httpapi": httpapi.Factory,
		} {
			if err := classifiers.Register(name, factory); err != nil {
				return fmt.Errorf("failed to register classifier backend: %w", err)
			}
		}

		classifier, err := classifiers.Create(backend, os.Getenv("CLASSIFIER_CONFIG"))
		if err != nil {
			return fmt.Errorf("failed to create classifier %q: %w", backend, err)
		}
		validator = semantic.NewValidator(classifier, verdicts, cfg.Semantic)
		logger.Info().Msgf("semantic layer enabled with the `%s` backend", backend)
	} else {
		logger.Info().Msg("no classifier backend configured, semantic layer disabled")
	}

	engine := rules.NewEngine(cfg.Rules)
	pipeline := detect.NewPipeline(engine, stats.NewDetector(cfg.Stats), validator)
	recorder, err := detect.NewRecorder(pipeline, db)
	if err != nil {
		return fmt.Errorf("failed to create run recorder: %w", err)
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Detector: recorder,
			Scorer:   scoring.NewScorer(),
			Rules:    engine.Descriptors(),
		},
	})

	return webAPI.Start()
}
