package backend

import (
	"context"

	"registro/internal/store"
)

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the assembled store and its optional companions.
type Result struct {
	Store store.Store

	// Listen blocks consuming the change bus until its context is cancelled,
	// so writes made by other household clients reach local subscribers.
	// Nil when the backend has no bus.
	Listen func(ctx context.Context) error

	Cleanup CleanupFunc
}

// Type selects the store implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
