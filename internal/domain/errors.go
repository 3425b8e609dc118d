package domain

import "errors"

// Sentinel errors for the answer pipeline. Each stage converts provider
// failures into one of these kinds; the orchestrator decides the fallback.
var (
	// ErrEmbeddingUnavailable signals the embedding provider could not be
	// initialized or invoked.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrStoreUnavailable signals a vector store connection or query failure.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrGenerationTimeout signals the language model exceeded its deadline.
	ErrGenerationTimeout = errors.New("generation timed out")
	// ErrGenerationUnavailable signals a language model transport failure
	// or a response that could not be parsed into text.
	ErrGenerationUnavailable = errors.New("generation provider unavailable")
)
