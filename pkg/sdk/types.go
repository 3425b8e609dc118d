package ragdex

// ChatRequest is one question against the corpus.
type ChatRequest struct {
	Query         string            `json:"query"`
	K             int               `json:"k,omitempty"`
	VerifyNumbers bool              `json:"verify_numbers,omitempty"`
	Filter        map[string]string `json:"filter,omitempty"`
}

// ChatResponse is the pipeline's answer. Error is non-empty only when the
// service hit a fatal internal failure; degraded answers come back with
// fallback prose and an empty Error.
type ChatResponse struct {
	Answer         string   `json:"answer"`
	Sources        []string `json:"sources"`
	Hits           []Hit    `json:"hits,omitempty"`
	RetrievalCount int      `json:"retrieval_count"`
	Query          string   `json:"query"`
	Error          string   `json:"error,omitempty"`
}

// Hit is one retrieved record.
type Hit struct {
	ID      string            `json:"id"`
	Score   float64           `json:"score"`
	Payload map[string]string `json:"payload,omitempty"`
}

// SearchResponse is the raw retrieval result.
type SearchResponse struct {
	Query string `json:"query"`
	Hits  []Hit  `json:"hits"`
	Total int    `json:"total"`
}

// HealthReport is the aggregated service health.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Healthy reports whether every component check passed.
func (h HealthReport) Healthy() bool { return h.Status == "ok" }
