package retrieve

import (
	"context"

	"github.com/auditcloud/ragdex/internal/domain"
	"github.com/auditcloud/ragdex/internal/domain/search/filter"
)

// Searcher runs KNN search over the indexed corpus and reports connectivity.
type Searcher interface {
	SearchKNN(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]domain.Hit, error)
	Ping(ctx context.Context) error
}

// EmbedderFactory constructs the embedding provider. Called at most once
// concurrently; invoked again only after a failed initialization.
type EmbedderFactory func() (domain.Embedder, error)

// SearcherFactory constructs a fresh store handle, verifying connectivity.
type SearcherFactory func(ctx context.Context) (Searcher, error)
