// Package answer orchestrates the retrieve → prompt → generate → verify
// pipeline. Each stage has a fixed fallback; a caller always gets a
// well-formed result, degraded at worst, never an error.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/auditcloud/ragdex/internal/domain"
	"github.com/auditcloud/ragdex/internal/logger"
	"github.com/auditcloud/ragdex/internal/metrics"
)

// Generation parameters. Temperature is pinned to zero so repeated
// queries over the same corpus produce stable answers.
const (
	generationMaxTokens   = 512
	generationTemperature = 0
)

// Stage fallback texts, kept stable because clients pattern-match on them.
const (
	noInformationAnswer = "I couldn't find any relevant information in the database to answer your query. " +
		"Please try rephrasing your question or check if the data has been ingested."
	emptyGenerationAnswer = "I couldn't generate a response based on the retrieved context. " +
		"Please try rephrasing your question."
)

// Pipeline outcomes as metric label values.
const (
	outcomeAnswered           = "answered"
	outcomeNoResults          = "no_results"
	outcomeGenerationFallback = "generation_fallback"
	outcomeFatal              = "fatal"
)

// Service runs the answer pipeline.
type Service struct {
	retriever Retriever
	builder   PromptBuilder
	generator Generator
	verifier  Verifier
}

// New creates the pipeline orchestrator.
func New(retriever Retriever, builder PromptBuilder, generator Generator, verifier Verifier) *Service {
	return &Service{
		retriever: retriever,
		builder:   builder,
		generator: generator,
		verifier:  verifier,
	}
}

// AnswerQuery runs the full pipeline for one query. AnswerQuery itself
// recovers any panic that escapes the stages; that recovery is the only
// path that sets the result's Error field.
func (s *Service) AnswerQuery(ctx context.Context, q domain.Query) (result domain.RagResult) {
	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("%v", r)
			log.Error("answer pipeline panicked", zap.String("panic", msg), zap.Stack("stack"))
			metrics.RagQueriesTotal.WithLabelValues(outcomeFatal).Inc()
			result = domain.NewRagResult(q.Text(),
				fmt.Sprintf("I encountered an error while processing your query: %s", msg), nil)
			result.Error = msg
		}
	}()

	hits := s.retriever.Retrieve(ctx, q.Text(), q.TopK(), q.Filter())
	if len(hits) == 0 {
		metrics.RagQueriesTotal.WithLabelValues(outcomeNoResults).Inc()
		return domain.NewRagResult(q.Text(), noInformationAnswer, nil)
	}

	promptText, entries := s.builder.Build(q.Text(), hits)
	log.Debug("prompt assembled",
		zap.Int("hits", len(hits)),
		zap.Int("context_entries", len(entries)),
		zap.Int("prompt_chars", len(promptText)))

	outcome := outcomeAnswered
	text, err := s.generator.Generate(ctx, promptText, generationMaxTokens, generationTemperature)
	if err != nil {
		log.Warn("generation failed, falling back to retrieval-only answer", zap.Error(err))
		outcome = outcomeGenerationFallback
		text = generationFailureAnswer(err, len(hits))
	} else if text = strings.TrimSpace(text); text == "" {
		log.Warn("generation produced empty output")
		outcome = outcomeGenerationFallback
		text = emptyGenerationAnswer
	}

	// Fallback texts go through verification like any generated answer.
	// The hit-count in the failure fallback can trip a warning on its own;
	// that is accepted rather than special-cased.
	if q.VerifyNumbers() {
		text = s.verifyAnswer(ctx, text, hits)
	}

	metrics.RagQueriesTotal.WithLabelValues(outcome).Inc()
	return domain.NewRagResult(q.Text(), text, hits)
}

// verifyAnswer appends a verification warning when numeric claims fail to
// match the evidence. A failing verifier is skipped, never fatal.
func (s *Service) verifyAnswer(ctx context.Context, text string, hits []domain.Hit) string {
	ok, warning, err := s.verifier.Verify(text, hits)
	if err != nil {
		logger.FromContext(ctx).Warn("numeric verification errored, skipping", zap.Error(err))
		return text
	}
	if ok {
		return text
	}
	metrics.VerificationFailuresTotal.Inc()
	return text + "\n\n" + warning
}

// generationFailureAnswer is the fallback when the model call fails but
// retrieval succeeded: surface the failure and point at the evidence.
func generationFailureAnswer(err error, hitCount int) string {
	return fmt.Sprintf(
		"I encountered an error while generating a response: %v. "+
			"However, I found %d relevant document(s) that might help answer your question.",
		err, hitCount)
}
