package domain

// RagResult is the final response record of one pipeline run.
// Invariants: RetrievalCount == len(Hits) and Sources are exactly the
// hit ids in the same order.
type RagResult struct {
	Answer         string
	Sources        []string
	Hits           []Hit
	RetrievalCount int
	Query          string
	Error          string // set only when a fatal error escaped all stage-local recoveries
}

// NewRagResult assembles a result from an answer and the ordered hit list,
// deriving Sources and RetrievalCount so the invariants hold by construction.
func NewRagResult(query, answer string, hits []Hit) RagResult {
	sources := make([]string, len(hits))
	for i, h := range hits {
		sources[i] = h.ID()
	}
	return RagResult{
		Answer:         answer,
		Sources:        sources,
		Hits:           hits,
		RetrievalCount: len(hits),
		Query:          query,
	}
}
