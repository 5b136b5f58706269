package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"registro/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "registro.db"), store.CollectionPath("test-app"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testFields(amount float64) map[string]any {
	return map[string]any{
		store.FieldDate:         "2024-01-10",
		store.FieldAmount:       amount,
		store.FieldDimension:    "Salud",
		store.FieldSubDimension: "Plan",
		store.FieldDescription:  "plan de salud",
		store.FieldType:         "Gasto",
		store.FieldUserID:       "actor-test",
	}
}

func TestSubscribe_InitialSnapshot(t *testing.T) {
	s := newTestStore(t)

	var snapshots [][]store.Document
	unsub, err := s.Subscribe(context.Background(), func(docs []store.Document) {
		snapshots = append(snapshots, docs)
	}, nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsub()

	if len(snapshots) != 1 {
		t.Fatalf("got %d snapshots, want initial snapshot on subscribe", len(snapshots))
	}
	if len(snapshots[0]) != 0 {
		t.Errorf("fresh store snapshot has %d documents", len(snapshots[0]))
	}
}

func TestInsertUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var last []store.Document
	unsub, err := s.Subscribe(ctx, func(docs []store.Document) { last = docs }, nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsub()

	id, err := s.Insert(ctx, testFields(120000))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == "" {
		t.Fatal("Insert must assign an id")
	}
	if len(last) != 1 || last[0].ID != id {
		t.Fatalf("snapshot after insert = %+v", last)
	}
	if got := last[0].Fields[store.FieldAmount]; got != float64(120000) {
		t.Errorf("amount = %v (%T)", got, got)
	}

	// Update replaces the stored document wholesale.
	updated := testFields(95000)
	delete(updated, store.FieldDescription)
	if err := s.Update(ctx, id, updated); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := last[0].Fields[store.FieldAmount]; got != float64(95000) {
		t.Errorf("amount after update = %v", got)
	}
	if _, ok := last[0].Fields[store.FieldDescription]; ok {
		t.Error("update must not merge with the previous document")
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(last) != 0 {
		t.Errorf("snapshot after delete = %+v", last)
	}
}

func TestUpdateDelete_UnknownID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Update(ctx, "no-such-id", testFields(1)); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Update unknown id error = %v", err)
	}
	if err := s.Delete(ctx, "no-such-id"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Delete unknown id error = %v", err)
	}
}

func TestCollectionIsolation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "registro.db")

	a, err := New(dbPath, store.CollectionPath("app-a"), nil)
	if err != nil {
		t.Fatalf("New(a): %v", err)
	}
	defer a.Close()
	b, err := New(dbPath, store.CollectionPath("app-b"), nil)
	if err != nil {
		t.Fatalf("New(b): %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	if _, err := a.Insert(ctx, testFields(100)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var got []store.Document
	unsub, err := b.Subscribe(ctx, func(docs []store.Document) { got = docs }, nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsub()
	if len(got) != 0 {
		t.Errorf("collection app-b sees %d documents from app-a", len(got))
	}
}

func TestUnsubscribeStopsPushes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count := 0
	unsub, err := s.Subscribe(ctx, func([]store.Document) { count++ }, nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	unsub()
	unsub() // idempotent

	before := count
	if _, err := s.Insert(ctx, testFields(5)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if count != before {
		t.Error("unsubscribed handler must not receive pushes")
	}
}

func TestCollection(t *testing.T) {
	s := newTestStore(t)
	if got := s.Collection(); got != "artifacts/test-app/public/data/financialRecords" {
		t.Errorf("Collection() = %q", got)
	}
}
