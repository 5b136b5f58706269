package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"registro/internal/cli"
	"registro/internal/ledger"
	"registro/internal/mirror"
)

// mirror-worker keeps a Google Sheets copy of the ledger up to date. It runs
// alongside the registro server against the same store.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the mirror worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendRes := cli.InitBackend(ctx, logger, cfg)
	if backendRes.Cleanup != nil {
		defer func() {
			if err := backendRes.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	target, err := mirror.NewGoogleSheets(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	engine := ledger.New(backendRes.Store)
	if err := engine.Start(ctx); err != nil {
		logger.Error("Failed to start ledger engine", "error", err)
		os.Exit(1)
	}
	defer engine.Stop()

	worker := mirror.NewWorker(engine, target, mirror.WorkerConfig{Interval: cfg.MirrorInterval})
	if err := worker.Start(ctx); err != nil {
		logger.Error("Failed to start mirror worker", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	if backendRes.Listen != nil {
		g.Go(func() error {
			if err := backendRes.Listen(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return worker.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Mirror worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Mirror worker stopped gracefully")
}
