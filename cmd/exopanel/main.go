package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"exopanel/internal/config"
	"exopanel/internal/infrastructure"
	"exopanel/internal/lineage"
	"exopanel/internal/pipeline"
	"exopanel/pkg/contracts"
)

// shutdownTimeout bounds the trace flush on exit.
const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "config/data.yml", "path to the run configuration file")
	traceSpans := flag.Bool("trace", false, "emit pipeline spans to stdout")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		os.Stdout.WriteString(contracts.GetVersionString() + "\n")
		return
	}

	os.Exit(run(*configPath, *traceSpans))
}

func run(configPath string, traceSpans bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "config", configPath, "error", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	tp, err := infrastructure.InitTracer(traceSpans)
	if err != nil {
		logger.Error("Failed to initialize tracer", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	recorder, err := lineage.NewRecorder(cfg.Paths.LineagePath())
	if err != nil {
		logger.Error("Failed to open lineage log", "error", err)
		return 1
	}
	defer recorder.Close()

	logger.Info("Starting panel build",
		slog.String("config", configPath),
		slog.String("run_id", recorder.RunID()),
		slog.String("start", cfg.Dates.StartDate().Format("2006-01-02")),
		slog.String("end", cfg.Dates.EndDate().Format("2006-01-02")))

	if err := pipeline.New(cfg, logger, recorder).Run(context.Background()); err != nil {
		logger.Error("Panel build failed", "error", err)
		return 1
	}
	return 0
}
