package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/ebook-organizer/internal/bootstrap"
	"github.com/kirillkom/ebook-organizer/internal/config"
	"github.com/kirillkom/ebook-organizer/internal/core/domain"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/report"
	"github.com/kirillkom/ebook-organizer/internal/observability/logging"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <ebook_dir> <output_dir>\n", os.Args[0])
		os.Exit(2)
	}
	srcDir, destDir := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("organizer", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	if cfg.MetricsPort != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", app.Metrics.Handler())
			if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
				logger.Warn("metrics_listener_failed", "error", err)
			}
		}()
	}

	instructions := ""
	if cfg.InstructionsPath != "" {
		raw, err := os.ReadFile(cfg.InstructionsPath)
		if err != nil {
			log.Fatalf("read instructions: %v", err)
		}
		instructions = string(raw)
	}

	policy, warnings := app.Interpreter.Parse(ctx, instructions)
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	run, err := app.Planner.OrganizeDir(ctx, srcDir, policy, destDir)
	if err != nil {
		log.Fatalf("run error: %v", err)
	}

	app.Metrics.ObserveOutcome(string(domain.OutcomeCopied), run.Copied)
	app.Metrics.ObserveOutcome(string(domain.OutcomeExcluded), run.Excluded)
	app.Metrics.ObserveOutcome(string(domain.OutcomeFailed), run.Failed)

	if cfg.ReportPath != "" {
		if err := report.WriteWorkbook(cfg.ReportPath, run); err != nil {
			logger.Warn("report_export_failed", "error", err)
		}
	}

	fmt.Printf("organized %d files: %d copied, %d skipped, %d failed\n",
		run.Copied+run.Excluded+run.Failed, run.Copied, run.Excluded, run.Failed)
	for _, failure := range run.Failures {
		fmt.Printf("  failed (%s): %s: %s\n", failure.Kind, failure.SourcePath, failure.Message)
	}
}
