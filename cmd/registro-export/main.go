package main

import (
	"context"
	"errors"
	"os"

	"registro/internal/cli"
	"registro/internal/export"
	"registro/internal/ledger"
)

// registro-export renders the current ledger to the CSV export file and
// exits. Useful for backups and cron jobs; the web UI serves the same
// document at /export.csv.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	backendRes := cli.InitBackend(ctx, logger, cfg)
	if backendRes.Cleanup != nil {
		defer func() {
			if err := backendRes.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	// Start applies the initial snapshot before returning, so one-shot use
	// needs no change listener.
	engine := ledger.New(backendRes.Store)
	if err := engine.Start(ctx); err != nil {
		logger.Error("Failed to start ledger engine", "error", err)
		os.Exit(1)
	}
	defer engine.Stop()

	data, err := export.CSV(engine.Snapshot())
	if err != nil {
		if errors.Is(err, export.ErrNoData) {
			logger.Warn("No records to export")
			return
		}
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}

	deliverer := export.FileDeliverer{Dir: cfg.ExportDir}
	if err := deliverer.Deliver(data, export.DefaultFilename, export.MIMEType); err != nil {
		logger.Error("Failed to write export file", "error", err, "dir", cfg.ExportDir)
		os.Exit(1)
	}
}
