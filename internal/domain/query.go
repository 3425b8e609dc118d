package domain

import (
	"fmt"
	"strings"
)

// MaxTopK caps how many documents a single query may retrieve.
const MaxTopK = 50

// Query is one validated question against the indexed corpus.
// Immutable once constructed; one per request.
type Query struct {
	text          string
	topK          int
	filter        map[string]string
	verifyNumbers bool
}

// NewQuery validates and creates a Query. text must be non-empty after
// trimming, topK must be positive (capped at MaxTopK). filter may be nil;
// every key/value pair becomes a required equality condition at retrieval.
func NewQuery(text string, topK int, filter map[string]string, verifyNumbers bool) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, fmt.Errorf("query text is required")
	}
	if topK <= 0 {
		return Query{}, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	var f map[string]string
	if len(filter) > 0 {
		f = make(map[string]string, len(filter))
		for k, v := range filter {
			f[k] = v
		}
	}

	return Query{text: text, topK: topK, filter: f, verifyNumbers: verifyNumbers}, nil
}

// Text returns the trimmed query text.
func (q Query) Text() string { return q.text }

// TopK returns how many documents to retrieve.
func (q Query) TopK() int { return q.topK }

// Filter returns a copy of the metadata equality filter, nil when unrestricted.
func (q Query) Filter() map[string]string {
	if q.filter == nil {
		return nil
	}
	f := make(map[string]string, len(q.filter))
	for k, v := range q.filter {
		f[k] = v
	}
	return f
}

// VerifyNumbers reports whether numeric claims should be cross-checked.
func (q Query) VerifyNumbers() bool { return q.verifyNumbers }
