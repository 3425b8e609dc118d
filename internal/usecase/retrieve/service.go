// Package retrieve embeds a query and finds the nearest corpus entries.
// Every failure degrades to an empty hit list; callers never see retrieval
// errors, only fewer (or zero) sources.
package retrieve

import (
	"context"

	"go.uber.org/zap"

	"github.com/auditcloud/ragdex/internal/domain"
	"github.com/auditcloud/ragdex/internal/domain/search/filter"
	"github.com/auditcloud/ragdex/internal/logger"
	"github.com/auditcloud/ragdex/internal/metrics"
)

// Service turns query text into ranked hits via embedding and KNN search.
type Service struct {
	embedder *EmbedderCell
	store    *SearcherCell
}

// New creates a retrieval service over lazy provider cells.
func New(embedder *EmbedderCell, store *SearcherCell) *Service {
	return &Service{embedder: embedder, store: store}
}

// Retrieve returns up to topK hits for the query text, most similar first.
// A nil slice means either no matches or a degraded provider; the two are
// indistinguishable to the caller by design of the pipeline.
func (s *Service) Retrieve(ctx context.Context, text string, topK int, filters map[string]string) []domain.Hit {
	log := logger.FromContext(ctx)

	embedder, err := s.embedder.Get()
	if err != nil {
		log.Warn("embedder unavailable, skipping retrieval", zap.Error(err))
		metrics.RetrievalFailuresTotal.WithLabelValues("embed").Inc()
		return nil
	}

	result, err := embedder.Embed(ctx, text)
	if err != nil {
		log.Warn("query embedding failed, skipping retrieval", zap.Error(err))
		metrics.RetrievalFailuresTotal.WithLabelValues("embed").Inc()
		return nil
	}

	expr, err := filter.FromMap(filters)
	if err != nil {
		log.Warn("invalid metadata filter, skipping retrieval", zap.Error(err))
		metrics.RetrievalFailuresTotal.WithLabelValues("filter").Inc()
		return nil
	}

	store, err := s.store.Get(ctx)
	if err != nil {
		log.Warn("vector store unavailable", zap.Error(err))
		metrics.RetrievalFailuresTotal.WithLabelValues("reconnect").Inc()
		return nil
	}

	hits, err := store.SearchKNN(ctx, result.Embedding, expr, topK)
	if err != nil {
		log.Warn("vector search failed", zap.Error(err), zap.Int("top_k", topK))
		metrics.RetrievalFailuresTotal.WithLabelValues("search").Inc()
		// The handle may be stale; drop it so the next query reconnects.
		s.store.Invalidate(store)
		return nil
	}

	metrics.RetrievalHits.Observe(float64(len(hits)))
	log.Debug("retrieval complete",
		zap.Int("hits", len(hits)),
		zap.Int("top_k", topK),
		zap.Int("prompt_tokens", result.PromptTokens))
	return hits
}
