package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"registro/internal/ledger"
)

// WorkerConfig holds configuration for the mirror worker.
type WorkerConfig struct {
	// Interval is the minimum time between mirror pushes (default: 30s).
	// Ledger updates arriving inside the window are coalesced into the
	// next push.
	Interval time.Duration

	// MaxConsecutiveFailures logs an escalated error once this many pushes
	// in a row have failed (default: 3). The worker keeps retrying.
	MaxConsecutiveFailures int
}

// DefaultWorkerConfig returns sensible defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Interval:               30 * time.Second,
		MaxConsecutiveFailures: 3,
	}
}

// Worker watches the ledger engine and mirrors snapshots to a target.
type Worker struct {
	engine *ledger.Engine
	target Target
	config WorkerConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWorker creates a mirror worker. Call Start to begin mirroring.
func NewWorker(engine *ledger.Engine, target Target, config WorkerConfig) *Worker {
	if config.Interval <= 0 {
		config.Interval = DefaultWorkerConfig().Interval
	}
	if config.MaxConsecutiveFailures <= 0 {
		config.MaxConsecutiveFailures = DefaultWorkerConfig().MaxConsecutiveFailures
	}
	return &Worker{
		engine: engine,
		target: target,
		config: config,
	}
}

// Start begins the mirror loop. Returns an error if already running.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("mirror worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Mirror worker started", "interval", w.config.Interval)
	return nil
}

// Stop gracefully stops the worker and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Mirror worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Mirror worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// IsRunning returns whether the worker is currently running.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Worker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Mirror the current view immediately on startup, then only when the
	// ledger has changed since the last push.
	failures := 0
	w.push(ctx, &failures)

	dirty := false
	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-w.engine.Updates():
			dirty = true
		case <-ticker.C:
			if !dirty {
				continue
			}
			dirty = false
			w.push(ctx, &failures)
		}
	}
}

func (w *Worker) push(ctx context.Context, failures *int) {
	snapshot := w.engine.Snapshot()
	if err := w.target.Replace(ctx, snapshot); err != nil {
		*failures++
		if *failures >= w.config.MaxConsecutiveFailures {
			slog.ErrorContext(ctx, "Mirror push keeps failing",
				"consecutive_failures", *failures, "error", err)
		} else {
			slog.WarnContext(ctx, "Mirror push failed, will retry on next change",
				"error", err)
		}
		return
	}
	*failures = 0
}
