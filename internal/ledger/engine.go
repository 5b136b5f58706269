// Package ledger maintains the ordered in-memory view of all financial
// records. The engine owns one subscription to the remote store; every push
// is treated as the new ground truth and replaces the published view
// atomically. Consumers read snapshots, they are never called back.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"registro/internal/core"
	"registro/internal/store"
)

// SyncError reports a subscription fault. The last successfully published
// view stays in place while one of these is pending.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("ledger sync: %v", e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Engine is the ledger sync engine.
type Engine struct {
	store store.Store

	mu          sync.RWMutex
	view        []core.FinancialRecord
	lastErr     *SyncError
	running     bool
	unsubscribe store.Unsubscribe

	// updates is a coalesced change signal: at most one pending tick.
	updates chan struct{}
}

// New creates an engine over the given store. Call Start to subscribe.
func New(st store.Store) *Engine {
	return &Engine{
		store:   st,
		updates: make(chan struct{}, 1),
	}
}

// Start opens the subscription. The initial snapshot is applied before
// Start returns. Returns an error if already running.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("ledger engine is already running")
	}
	e.running = true
	e.mu.Unlock()

	unsubscribe, err := e.store.Subscribe(ctx, e.applySnapshot, e.handleError)
	if err != nil {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		return fmt.Errorf("subscribe to ledger store: %w", err)
	}

	e.mu.Lock()
	e.unsubscribe = unsubscribe
	e.mu.Unlock()

	slog.InfoContext(ctx, "Ledger engine started", "record_count", len(e.Snapshot()))
	return nil
}

// Stop releases the subscription; no further pushes are processed. The last
// published view remains readable.
func (e *Engine) Stop() {
	e.mu.Lock()
	unsubscribe := e.unsubscribe
	e.unsubscribe = nil
	e.running = false
	e.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Snapshot returns a copy of the current ledger view, sorted by date
// descending.
func (e *Engine) Snapshot() []core.FinancialRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]core.FinancialRecord(nil), e.view...)
}

// LastError returns the pending sync error, or nil after the last push
// succeeded.
func (e *Engine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastErr == nil {
		return nil
	}
	return e.lastErr
}

// Updates returns a channel that receives a (coalesced) tick after every
// applied push or recorded fault.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

func (e *Engine) applySnapshot(docs []store.Document) {
	records := make([]core.FinancialRecord, 0, len(docs))
	dropped := 0
	for _, doc := range docs {
		rec, err := RecordFromDocument(doc)
		if err != nil {
			slog.Warn("Dropping malformed ledger document", "record_id", doc.ID, "error", err)
			dropped++
			continue
		}
		records = append(records, rec)
	}

	sortLedger(records)

	e.mu.Lock()
	e.view = records
	e.lastErr = nil
	e.mu.Unlock()

	e.notify()

	slog.Debug("Ledger view replaced", "record_count", len(records), "dropped", dropped)
}

func (e *Engine) handleError(err error) {
	e.mu.Lock()
	e.lastErr = &SyncError{Err: err}
	e.mu.Unlock()

	e.notify()

	slog.Error("Ledger subscription fault, keeping last view", "error", err)
}

func (e *Engine) notify() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}

// sortLedger orders records by date descending. Same-day records are ordered
// by write timestamp descending so that the view is stable across pushes;
// records without a timestamp keep their delivery order.
func sortLedger(records []core.FinancialRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].WriteTimestamp.After(records[j].WriteTimestamp)
	})
}
