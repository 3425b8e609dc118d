// Package db defines the vector store contract consumed by the retrieval
// layer. The store is an external capability: implementations live in
// subpackages (redis) and the rest of the system depends only on these
// interfaces.
package db

import (
	"context"
	"time"
)

// Store is the database facade for the answer pipeline.
type Store interface {
	Pinger
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher provides KNN search over an FT index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
