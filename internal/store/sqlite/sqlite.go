// Package sqlite implements the ledger store on a shared SQLite database.
// Documents live in a single table keyed by collection path; every local
// mutation re-reads the collection and pushes the snapshot to subscribers.
// When an AMQP change bus is attached, mutations are announced to the other
// household clients and their announcements trigger a local re-read, so the
// subscription also observes writes this process never made.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"registro/internal/amqp"
	"registro/internal/store"
)

type subscriber struct {
	onSnapshot store.SnapshotFunc
	onError    store.ErrorFunc
}

type Store struct {
	db         *sql.DB
	collection string
	bus        *amqp.Client // nil when change propagation is disabled

	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

// New opens (and migrates) the database and returns a store bound to the
// given collection path. bus may be nil.
func New(dbPath, collection string, bus *amqp.Client) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:         db,
		collection: collection,
		bus:        bus,
		subs:       make(map[int]*subscriber),
	}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Collection returns the collection path the store was created for.
func (s *Store) Collection() string {
	return s.collection
}

// Subscribe implements store.Store.
func (s *Store) Subscribe(ctx context.Context, onSnapshot store.SnapshotFunc, onError store.ErrorFunc) (store.Unsubscribe, error) {
	if onSnapshot == nil {
		return nil, fmt.Errorf("subscribe %s: nil snapshot handler", s.collection)
	}

	snap, err := s.readAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial snapshot: %w", err)
	}

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = &subscriber{onSnapshot: onSnapshot, onError: onError}
	s.mu.Unlock()

	onSnapshot(snap)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
	return unsubscribe, nil
}

// Insert implements store.Store.
func (s *Store) Insert(ctx context.Context, fields map[string]any) (string, error) {
	id := uuid.NewString()
	body, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, collection, fields) VALUES (?, ?, ?)`,
		id, s.collection, string(body))
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}

	s.afterMutation(ctx, id, amqp.OpInsert)
	return id, nil
}

// Update implements store.Store. The stored document is replaced wholesale.
func (s *Store) Update(ctx context.Context, id string, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET fields = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND collection = ?`,
		string(body), id, s.collection)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update %s/%s: document not found", s.collection, id)
	}

	s.afterMutation(ctx, id, amqp.OpUpdate)
	return nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND collection = ?`,
		id, s.collection)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete %s/%s: document not found", s.collection, id)
	}

	s.afterMutation(ctx, id, amqp.OpDelete)
	return nil
}

// ListenChanges consumes the change bus until ctx is cancelled, re-reading
// the collection whenever another client announces a write. No-op without a bus.
func (s *Store) ListenChanges(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}
	return s.bus.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
		if msg.Collection != s.collection {
			return nil
		}
		s.broadcast(ctx)
		return nil
	})
}

// afterMutation pushes a fresh snapshot locally and announces the change on
// the bus. A failed announcement does not fail the write; the local copy is
// already durable.
func (s *Store) afterMutation(ctx context.Context, id, op string) {
	s.broadcast(ctx)

	if s.bus == nil {
		return
	}
	if err := s.bus.PublishChange(ctx, amqp.NewChangeMessage(s.collection, id, op)); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger change",
			"error", err,
			"record_id", id,
			"operation", op)
	}
}

func (s *Store) broadcast(ctx context.Context) {
	snap, err := s.readAll(ctx)

	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	if err != nil {
		slog.ErrorContext(ctx, "Failed to read collection snapshot",
			"error", err,
			"collection", s.collection)
		for _, sub := range subs {
			if sub.onError != nil {
				sub.onError(err)
			}
		}
		return
	}

	for _, sub := range subs {
		sub.onSnapshot(snap)
	}
}

func (s *Store) readAll(ctx context.Context) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields FROM documents WHERE collection = ? ORDER BY updated_at`,
		s.collection)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var (
			id   string
			body string
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		fields := make(map[string]any)
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			// A corrupt row must not take the whole snapshot down.
			slog.WarnContext(ctx, "Skipping undecodable document",
				"record_id", id,
				"error", err)
			continue
		}
		docs = append(docs, store.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}
