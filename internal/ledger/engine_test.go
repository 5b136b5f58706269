package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"registro/internal/core"
	"registro/internal/store"
	"registro/internal/store/memory"
)

func insertRecord(t *testing.T, s *memory.Store, date string, amount float64, typ core.RecordType, ts time.Time) string {
	t.Helper()
	id, err := s.Insert(context.Background(), map[string]any{
		store.FieldDate:         date,
		store.FieldAmount:       amount,
		store.FieldDimension:    "Salud",
		store.FieldSubDimension: "Plan",
		store.FieldType:         string(typ),
		store.FieldTimestamp:    ts.Format(time.RFC3339Nano),
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return id
}

func TestEngine_PublishesSortedView(t *testing.T) {
	s := memory.New(store.CollectionPath("test-app"))
	now := time.Now()
	insertRecord(t, s, "2024-01-05", 500000, core.Income, now)
	insertRecord(t, s, "2024-01-10", 120000, core.Expense, now)

	e := New(s)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	view := e.Snapshot()
	if len(view) != 2 {
		t.Fatalf("view has %d records, want 2", len(view))
	}
	if view[0].Date != "2024-01-10" {
		t.Errorf("most recent date must come first, got %q", view[0].Date)
	}

	totals := core.Aggregate(view)
	if totals.Balance != 380000 {
		t.Errorf("Balance = %v, want 380000", totals.Balance)
	}
}

func TestEngine_ReplacesViewOnPush(t *testing.T) {
	s := memory.New(store.CollectionPath("test-app"))
	e := New(s)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	if len(e.Snapshot()) != 0 {
		t.Fatal("view should start empty")
	}

	id := insertRecord(t, s, "2024-02-01", 10, core.Expense, time.Now())
	if got := e.Snapshot(); len(got) != 1 || got[0].ID != id {
		t.Fatalf("view after insert = %v", got)
	}

	if err := s.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := e.Snapshot(); len(got) != 0 {
		t.Fatalf("view after delete = %v", got)
	}
}

func TestEngine_DropsMalformedDocuments(t *testing.T) {
	s := memory.New(store.CollectionPath("test-app"))
	if _, err := s.Insert(context.Background(), map[string]any{store.FieldDate: "2024-01-01"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	insertRecord(t, s, "2024-01-02", 5, core.Income, time.Now())

	e := New(s)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	view := e.Snapshot()
	if len(view) != 1 {
		t.Fatalf("malformed document should be dropped, view = %v", view)
	}
	if view[0].Date != "2024-01-02" {
		t.Errorf("surviving record = %+v", view[0])
	}
}

func TestEngine_KeepsLastViewOnError(t *testing.T) {
	s := memory.New(store.CollectionPath("test-app"))
	insertRecord(t, s, "2024-01-05", 500000, core.Income, time.Now())

	e := New(s)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	s.FailSubscribers(errors.New("transient connectivity fault"))

	if got := e.Snapshot(); len(got) != 1 {
		t.Fatalf("view must survive a sync fault, got %v", got)
	}

	var syncErr *SyncError
	if !errors.As(e.LastError(), &syncErr) {
		t.Fatalf("LastError = %v, want *SyncError", e.LastError())
	}

	// The next good push clears the fault.
	insertRecord(t, s, "2024-01-06", 1, core.Expense, time.Now())
	if err := e.LastError(); err != nil {
		t.Errorf("LastError after good push = %v, want nil", err)
	}
	if got := e.Snapshot(); len(got) != 2 {
		t.Errorf("view after recovery = %v", got)
	}
}

func TestEngine_StopReleasesSubscription(t *testing.T) {
	s := memory.New(store.CollectionPath("test-app"))
	e := New(s)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.Stop()

	insertRecord(t, s, "2024-03-01", 9, core.Expense, time.Now())
	if got := e.Snapshot(); len(got) != 0 {
		t.Errorf("stopped engine must not process pushes, view = %v", got)
	}
}

func TestEngine_StartTwice(t *testing.T) {
	s := memory.New(store.CollectionPath("test-app"))
	e := New(s)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	if err := e.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}
}

func TestEngine_Updates(t *testing.T) {
	s := memory.New(store.CollectionPath("test-app"))
	e := New(s)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	// Drain the tick from the initial snapshot, then mutate.
	select {
	case <-e.Updates():
	default:
	}

	insertRecord(t, s, "2024-04-01", 3, core.Expense, time.Now())

	select {
	case <-e.Updates():
	case <-time.After(time.Second):
		t.Fatal("no update tick after mutation")
	}
}

func TestSortLedger_TieBreak(t *testing.T) {
	early := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	late := time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC)
	records := []core.FinancialRecord{
		{ID: "a", Date: "2024-01-10", WriteTimestamp: early},
		{ID: "b", Date: "2024-01-10", WriteTimestamp: late},
		{ID: "c", Date: "2024-01-09"},
	}

	sortLedger(records)

	if records[0].ID != "b" || records[1].ID != "a" || records[2].ID != "c" {
		t.Errorf("order = %s,%s,%s; want b,a,c", records[0].ID, records[1].ID, records[2].ID)
	}
}
