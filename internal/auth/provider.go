// Package auth carries the actor identifier attributed to writes. Session
// establishment is an external concern; this package only holds the opaque
// identifier it produced, falling back to a locally generated random one
// when no authenticated session exists.
package auth

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Provider supplies the stable actor identifier for this client.
type Provider interface {
	ActorID() string
}

type staticProvider struct {
	id string
}

func (p staticProvider) ActorID() string {
	return p.id
}

// New returns a provider for the configured identifier, or an anonymous
// random identity when none is configured. The anonymous id is stable for
// the lifetime of the provider.
func New(configured string) Provider {
	id := strings.TrimSpace(configured)
	if id == "" {
		id = uuid.NewString()
		slog.Info("No configured actor identity, generated anonymous id", "actor_id", id)
	}
	return staticProvider{id: id}
}
