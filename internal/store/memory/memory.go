// Package memory provides an in-process ledger store. It is the default
// backend for local use and the reference implementation of the store
// contract for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"registro/internal/store"
)

type subscriber struct {
	onSnapshot store.SnapshotFunc
	onError    store.ErrorFunc
}

// Store keeps documents in memory and fans the full document set out to
// every subscriber after each mutation.
type Store struct {
	collection string

	mu   sync.Mutex
	docs map[string]map[string]any
	subs map[int]*subscriber
	next int
}

// New creates an empty store for the given collection path.
func New(collection string) *Store {
	return &Store{
		collection: collection,
		docs:       make(map[string]map[string]any),
		subs:       make(map[int]*subscriber),
	}
}

// Collection returns the collection path the store was created for.
func (s *Store) Collection() string {
	return s.collection
}

// Subscribe implements store.Store. The current snapshot is pushed to the
// new subscriber before Subscribe returns.
func (s *Store) Subscribe(_ context.Context, onSnapshot store.SnapshotFunc, onError store.ErrorFunc) (store.Unsubscribe, error) {
	if onSnapshot == nil {
		return nil, fmt.Errorf("subscribe %s: nil snapshot handler", s.collection)
	}

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = &subscriber{onSnapshot: onSnapshot, onError: onError}
	snap := s.snapshotLocked()
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
func (s *Store) Insert(_ context.Context, fields map[string]any) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	s.docs[id] = cloneFields(fields)
	s.mu.Unlock()

	s.broadcast()
	return id, nil
}

// Update implements store.Store. The document is replaced wholesale.
func (s *Store) Update(_ context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	if _, ok := s.docs[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("update %s/%s: document not found", s.collection, id)
	}
	s.docs[id] = cloneFields(fields)
	s.mu.Unlock()

	s.broadcast()
	return nil
}

// Delete implements store.Store.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.docs[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("delete %s/%s: document not found", s.collection, id)
	}
	delete(s.docs, id)
	s.mu.Unlock()

	s.broadcast()
	return nil
}

// FailSubscribers pushes an error to every subscriber. Exercises the
// stale-but-consistent path of the sync engine.
func (s *Store) FailSubscribers(err error) {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.onError != nil {
			sub.onError(err)
		}
	}
}

func (s *Store) broadcast() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	subs := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.onSnapshot(snap)
	}
}

func (s *Store) snapshotLocked() []store.Document {
	snap := make([]store.Document, 0, len(s.docs))
	for id, fields := range s.docs {
		snap = append(snap, store.Document{ID: id, Fields: cloneFields(fields)})
	}
	return snap
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
