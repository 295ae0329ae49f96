// Package idgen allocates short unique identifiers for new resources.
package idgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"studybuddy/internal/domain"
)

// Namespace is the identifier space within which uniqueness must hold, backed
// by the entity's store.
type Namespace interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

const maxAttempts = 5

// Allocator produces collision-checked identifiers of fixed length drawn from
// a UUID-derived hex space. The existence check bounds the collision window
// but cannot close it: two concurrent callers can both see "absent" before
// either inserts. The insert path therefore must carry a unique constraint,
// and callers retry on domain.ErrConflict instead of trusting the check alone.
// The allocator itself reserves nothing.
type Allocator struct {
	store  Namespace
	length int

	// candidate is swappable for tests
	candidate func() string
}

// New creates an allocator for the given namespace. length must be within the
// 32 hex characters a UUID provides.
func New(store Namespace, length int) *Allocator {
	if length < 1 || length > 32 {
		panic(fmt.Sprintf("idgen: invalid identifier length %d", length))
	}
	a := &Allocator{store: store, length: length}
	a.candidate = a.randomID
	return a
}

// Allocate returns an identifier absent from the namespace at the moment of
// allocation. After maxAttempts collisions it fails with
// domain.ErrAllocationExhausted rather than looping unboundedly.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id := a.candidate()

		exists, err := a.store.ExistsByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check identifier %q: %w", id, err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("%d attempts: %w", maxAttempts, domain.ErrAllocationExhausted)
}

func (a *Allocator) randomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:a.length]
}
