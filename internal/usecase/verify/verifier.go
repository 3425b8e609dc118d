// Package verify cross-checks numeric claims in a generated answer
// against the amounts present in the retrieved evidence.
package verify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/auditcloud/ragdex/internal/domain"
)

// numberPattern matches dollar-ish numeric tokens: an optional currency
// sign, then digits with optional thousands separators and a decimal part.
var numberPattern = regexp.MustCompile(`\$?\s*(\d{1,3}(?:,\d{3})*(?:\.\d+)?)`)

// Verifier checks that every numeric token in the answer appears in the
// evidence. Purely lexical: no arithmetic, no unit awareness.
type Verifier struct{}

// New creates a Verifier.
func New() *Verifier { return &Verifier{} }

// Verify reports whether the answer's numeric claims are covered by the
// hits' amount values. ok is true when every token is found (or the
// answer has none); warning carries the caller-facing notice listing
// unverified tokens. The error return satisfies the pipeline contract;
// this implementation never fails.
func (v *Verifier) Verify(answer string, hits []domain.Hit) (ok bool, warning string, err error) {
	claims := extractNumbers(answer)
	if len(claims) == 0 {
		return true, "", nil
	}

	// Evidence is the amount payload fields only. Numbers appearing in
	// narrative text are not trusted as confirmation.
	evidence := make(map[string]struct{})
	for _, h := range hits {
		if amount, found := h.Payload().Amount(); found {
			evidence[normalizeNumber(amount)] = struct{}{}
		}
	}

	var unverified []string
	seen := make(map[string]struct{})
	for _, c := range claims {
		norm := normalizeNumber(c)
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		if _, found := evidence[norm]; !found {
			unverified = append(unverified, c)
		}
	}

	if len(unverified) == 0 {
		return true, "", nil
	}
	warning = fmt.Sprintf(
		"[VERIFICATION WARNING] Some numeric claims (%s) could not be verified from retrieved sources.",
		strings.Join(unverified, ", "))
	return false, warning, nil
}

// extractNumbers returns the numeric tokens in s, in order of appearance,
// without currency signs or surrounding whitespace.
func extractNumbers(s string) []string {
	matches := numberPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// normalizeNumber strips thousands separators and currency signs so
// "1,200.00" and "$1200.00" compare equal.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	return s
}
