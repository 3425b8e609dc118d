package retrieve

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/auditcloud/ragdex/internal/domain"
)

// EmbedderCell is a guarded lazy cell for the embedding provider.
// Initialization is expensive, so the factory runs at most once across
// concurrent first users; a failed initialization is retried on the next
// use. After success the handle is immutable and freely shareable.
type EmbedderCell struct {
	factory EmbedderFactory

	mu  sync.Mutex
	cur atomic.Pointer[domain.Embedder]
}

// NewEmbedderCell creates a cell around the factory.
func NewEmbedderCell(factory EmbedderFactory) *EmbedderCell {
	return &EmbedderCell{factory: factory}
}

// Get returns the embedder, initializing it on first use.
func (c *EmbedderCell) Get() (domain.Embedder, error) {
	if p := c.cur.Load(); p != nil {
		return *p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check under the lock: another request may have won the race.
	if p := c.cur.Load(); p != nil {
		return *p, nil
	}

	e, err := c.factory()
	if err != nil {
		return nil, err
	}
	c.cur.Store(&e)
	return e, nil
}

// SearcherCell holds the shared vector store handle. The handle may go
// bad at any time; Invalidate marks it disconnected and the next Get
// attempts exactly one reconnect. Replacement is atomic: readers never
// observe a partially constructed handle, and the last successful
// reconnect wins.
type SearcherCell struct {
	factory SearcherFactory

	mu  sync.Mutex
	cur atomic.Pointer[Searcher]
}

// NewSearcherCell creates a cell around the factory.
func NewSearcherCell(factory SearcherFactory) *SearcherCell {
	return &SearcherCell{factory: factory}
}

// Get returns the current store handle, attempting one reconnect when the
// cell is known-disconnected.
func (c *SearcherCell) Get(ctx context.Context) (Searcher, error) {
	if p := c.cur.Load(); p != nil {
		return *p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p := c.cur.Load(); p != nil {
		return *p, nil
	}

	s, err := c.factory(ctx)
	if err != nil {
		return nil, err
	}
	c.cur.Store(&s)
	return s, nil
}

// Invalidate marks the handle disconnected so the next Get reconnects.
// A handle replaced concurrently by a newer reconnect is left alone.
func (c *SearcherCell) Invalidate(s Searcher) {
	if p := c.cur.Load(); p != nil && *p == s {
		c.cur.CompareAndSwap(p, nil)
	}
}
