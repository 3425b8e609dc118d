// Package search adapts the db vector store to the retriever's contract:
// index naming, key prefix handling, and mapping of raw search entries
// into domain hits.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/auditcloud/ragdex/internal/db"
	"github.com/auditcloud/ragdex/internal/domain"
	"github.com/auditcloud/ragdex/internal/domain/search/filter"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	db.Pinger
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/retrieve.Searcher over a single record collection.
type Repo struct {
	store      store
	keyPrefix  string
	collection string
}

// New creates a search repository bound to a collection.
func New(s store, keyPrefix, collection string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, collection: collection}
}

// Ping proxies the connectivity check to the store.
func (r *Repo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// SearchKNN performs a KNN search and maps entries to domain hits.
// No RETURN clause is sent: payload schemas are heterogeneous, so every
// stored field comes back; the raw embedding blob is stripped during mapping.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, filters filter.Expression, topK int,
) ([]domain.Hit, error) {
	q := &db.KNNQuery{
		IndexName: r.indexName(),
		Filters:   filters,
		Vector:    vector,
		K:         topK,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.collection, err)
	}

	return r.mapHits(sr), nil
}

func (r *Repo) indexName() string {
	return fmt.Sprintf("%s%s:idx", r.keyPrefix, r.collection)
}

func (r *Repo) mapHits(sr *db.SearchResult) []domain.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := fmt.Sprintf("%s%s:", r.keyPrefix, r.collection)
	hits := make([]domain.Hit, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)

		fields := make(map[string]string, len(entry.Fields))
		for k, v := range entry.Fields {
			if k == "vector" {
				continue // raw embedding blob, not payload
			}
			fields[k] = v
		}

		hits = append(hits, domain.NewHit(id, entry.Score, fields))
	}

	return hits
}
