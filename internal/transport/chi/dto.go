package chi

import "github.com/auditcloud/ragdex/internal/domain"

// Error codes returned in JSON error bodies.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeInternalError    = "internal_error"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	Query         string            `json:"query"`
	K             int               `json:"k,omitempty"`
	VerifyNumbers bool              `json:"verify_numbers,omitempty"`
	Filter        map[string]string `json:"filter,omitempty"`
}

// chatResponse is the POST /api/chat reply.
type chatResponse struct {
	Answer         string        `json:"answer"`
	Sources        []string      `json:"sources"`
	Hits           []hitResponse `json:"hits,omitempty"`
	RetrievalCount int           `json:"retrieval_count"`
	Query          string        `json:"query"`
	Error          string        `json:"error,omitempty"`
}

// hitResponse is one retrieved record in API responses.
type hitResponse struct {
	ID      string            `json:"id"`
	Score   float64           `json:"score"`
	Payload map[string]string `json:"payload,omitempty"`
}

// searchResponse is the GET /api/search reply.
type searchResponse struct {
	Query string        `json:"query"`
	Hits  []hitResponse `json:"hits"`
	Total int           `json:"total"`
}

// healthResponse is the GET /health reply.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func hitsToDTO(hits []domain.Hit) []hitResponse {
	if len(hits) == 0 {
		return nil
	}
	out := make([]hitResponse, len(hits))
	for i, h := range hits {
		out[i] = hitResponse{
			ID:      h.ID(),
			Score:   h.Score(),
			Payload: h.Payload().Fields(),
		}
	}
	return out
}

func resultToDTO(res domain.RagResult) chatResponse {
	return chatResponse{
		Answer:         res.Answer,
		Sources:        res.Sources,
		Hits:           hitsToDTO(res.Hits),
		RetrievalCount: res.RetrievalCount,
		Query:          res.Query,
		Error:          res.Error,
	}
}
