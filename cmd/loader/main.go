package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/voronoimap/internal/config"
	"github.com/woozymasta/voronoimap/internal/logger"
	"github.com/woozymasta/voronoimap/internal/metrics"
	"github.com/woozymasta/voronoimap/internal/processor"
	"github.com/woozymasta/voronoimap/internal/source"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"       env:"CONFIG_FILE"   description:"Path to configuration file" default:"config.yaml"`
	Output      string   `short:"o" long:"output"       env:"OUTPUT_DIR"    description:"Override output directory from config"`
	DatabaseURL string   `long:"database-url"           description:"Override PostgreSQL DSN from config"`
	MetricsFile string   `short:"m" long:"metrics-file" env:"METRICS_FILE"  description:"Write run metrics in textfile format to this path"`
	Limit       []string `short:"l" long:"limit"        env:"LIMIT_NAMES"   description:"Limit processing to specific area names"`
	Concurrency int      `short:"p" long:"concurrency"  env:"CONCURRENCY"   description:"Areas processed in parallel" default:"4"`
	Force       bool     `short:"f" long:"force"        description:"Force overwrite of existing files"`
}

func main() {
	_ = godotenv.Load(".env")

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}
	if opts.DatabaseURL != "" {
		cfg.DatabaseURL = opts.DatabaseURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := &source.Loader{Client: source.NewHTTPClient()}
	if cfg.DatabaseURL != "" {
		db, err := source.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer func() { _ = db.Close() }()
		loader.DB = db
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	// Filter areas if limit is set
	areasToProcess := cfg.Areas
	if len(opts.Limit) > 0 {
		areasToProcess = make([]config.Area, 0)
		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			if seen[limitName] {
				continue
			}
			seen[limitName] = true

			if a := cfg.Find(limitName); a != nil {
				areasToProcess = append(areasToProcess, *a)
			} else {
				log.Error().
					Str("name", limitName).
					Msg("Area specified in --limit not found in configuration")
			}
		}
	}

	log.Info().
		Int("areas_total", len(cfg.Areas)).
		Int("areas_queued", len(areasToProcess)).
		Str("output", cfg.Output).
		Bool("force", opts.Force).
		Msg("Starting loader")

	p := &processor.Processor{
		Loader:    loader,
		Metrics:   collector,
		OutputDir: cfg.Output,
		Force:     opts.Force,
	}

	start := time.Now()
	results := p.ProcessAreas(ctx, areasToProcess, opts.Concurrency)

	var failed, skipped int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Skipped:
			skipped++
		}
	}

	if opts.MetricsFile != "" {
		if err := collector.WriteTextfile(opts.MetricsFile); err != nil {
			log.Error().Err(err).Str("path", opts.MetricsFile).Msg("Failed to write metrics file")
		}
	}

	log.Info().
		Int("processed", len(results)-failed-skipped).
		Int("skipped", skipped).
		Int("failed", failed).
		Dur("took", time.Since(start)).
		Msg("Loader finished")

	if failed > 0 {
		os.Exit(1)
	}
}
