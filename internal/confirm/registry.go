package confirm

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoPending is returned when no live confirmation exists for the user:
	// never requested, already resolved, or expired.
	ErrNoPending = errors.New("no pending confirmation")
	// ErrNotOwner is returned when the acting identity differs from the
	// identity that requested the confirmation.
	ErrNotOwner = errors.New("confirmation owned by another user")
)

// DefaultTTL bounds how long a pending confirmation stays actionable.
const DefaultTTL = 10 * time.Minute

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Pending ties a destructive-action request to the requesting user for one
// interaction round-trip. It is never persisted.
type Pending struct {
	Token     string
	UserID    string
	CreatedAt time.Time
}

// Registry holds at most one pending confirmation per user, each with a
// bounded lifetime. Confirm and cancel both consume the entry; a replay
// resolves to ErrNoPending rather than acting twice.
type Registry struct {
	clock Clock
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]Pending // keyed by user id
}

// NewRegistry creates a Registry with the default lifetime.
func NewRegistry() *Registry {
	return NewRegistryWithClock(realClock{}, DefaultTTL)
}

// NewRegistryWithClock creates a Registry with a custom clock and lifetime
// (for testing).
func NewRegistryWithClock(clock Clock, ttl time.Duration) *Registry {
	return &Registry{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]Pending),
	}
}

// Begin records a new pending confirmation for userID, replacing any prior
// one, and returns it.
func (r *Registry) Begin(userID string) Pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	p := Pending{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: r.clock.Now(),
	}
	r.entries[userID] = p
	return p
}

// Take resolves the pending confirmation for userID on behalf of actorID,
// consuming it. Ownership mismatch returns ErrNotOwner and leaves the entry
// in place; a missing or expired entry returns ErrNoPending.
func (r *Registry) Take(userID, actorID string) (Pending, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	p, ok := r.entries[userID]
	if !ok {
		return Pending{}, ErrNoPending
	}
	if p.UserID != actorID {
		return Pending{}, ErrNotOwner
	}
	delete(r.entries, userID)
	return p, nil
}

// sweep drops expired entries. Caller must hold r.mu.
func (r *Registry) sweep() {
	cutoff := r.clock.Now().Add(-r.ttl)
	for userID, p := range r.entries {
		if p.CreatedAt.Before(cutoff) {
			delete(r.entries, userID)
		}
	}
}
