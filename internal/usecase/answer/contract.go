package answer

import (
	"context"

	"github.com/auditcloud/ragdex/internal/domain"
	"github.com/auditcloud/ragdex/internal/usecase/prompt"
)

// Retriever finds relevant records for a query. Degrades to nil on failure.
type Retriever interface {
	Retrieve(ctx context.Context, text string, topK int, filters map[string]string) []domain.Hit
}

// PromptBuilder renders retrieved hits into a generation prompt.
type PromptBuilder interface {
	Build(query string, hits []domain.Hit) (string, []prompt.Entry)
}

// Generator produces the answer text from a prompt.
type Generator interface {
	Generate(ctx context.Context, promptText string, maxTokens int, temperature float32) (string, error)
}

// Verifier cross-checks numeric claims in the answer against evidence.
type Verifier interface {
	Verify(answer string, hits []domain.Hit) (ok bool, warning string, err error)
}
