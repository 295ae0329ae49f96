package idgen

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/domain"
)

// mapNamespace is a Namespace over a plain set, safe for concurrent use.
type mapNamespace struct {
	mu  sync.Mutex
	ids map[string]bool
	err error
}

func newMapNamespace() *mapNamespace {
	return &mapNamespace{ids: make(map[string]bool)}
}

func (n *mapNamespace) ExistsByID(ctx context.Context, id string) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return false, n.err
	}
	return n.ids[id], nil
}

func (n *mapNamespace) insert(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids[id] = true
}

func TestAllocateLengthAndCharset(t *testing.T) {
	ns := newMapNamespace()

	for _, length := range []int{10, 12} {
		a := New(ns, length)
		id, err := a.Allocate(context.Background())
		require.NoError(t, err)
		assert.Len(t, id, length)
		assert.NotContains(t, id, "-")
	}
}

func TestAllocateDistinct(t *testing.T) {
	ns := newMapNamespace()
	a := New(ns, 10)

	for i := 0; i < 1000; i++ {
		id, err := a.Allocate(context.Background())
		require.NoError(t, err)
		require.False(t, ns.ids[id], "allocator returned an occupied id")
		ns.insert(id)
	}
}

func TestAllocateConcurrentDistinct(t *testing.T) {
	ns := newMapNamespace()
	a := New(ns, 10)

	const workers = 50
	const perWorker = 20

	var mu sync.Mutex
	seen := make(map[string]int, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, err := a.Allocate(context.Background())
				if err != nil {
					t.Error(err)
					return
				}
				ns.insert(id)
				mu.Lock()
				seen[id]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker, "every allocation must be distinct")
}

func TestAllocateSkipsCollisions(t *testing.T) {
	ns := newMapNamespace()
	ns.insert("aaaa")
	ns.insert("bbbb")

	a := New(ns, 4)
	queue := []string{"aaaa", "bbbb", "cccc"}
	a.candidate = func() string {
		next := queue[0]
		queue = queue[1:]
		return next
	}

	id, err := a.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cccc", id)
}

func TestAllocateExhausted(t *testing.T) {
	ns := newMapNamespace()
	ns.insert("aaaa")

	a := New(ns, 4)
	a.candidate = func() string { return "aaaa" }

	_, err := a.Allocate(context.Background())
	assert.ErrorIs(t, err, domain.ErrAllocationExhausted)
}

func TestAllocateStoreError(t *testing.T) {
	ns := newMapNamespace()
	ns.err = errors.New("connection refused")

	a := New(ns, 4)
	_, err := a.Allocate(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAllocationExhausted)
}

func TestNewPanicsOnBadLength(t *testing.T) {
	assert.Panics(t, func() { New(newMapNamespace(), 0) })
	assert.Panics(t, func() { New(newMapNamespace(), 33) })
}
