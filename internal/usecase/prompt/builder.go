// Package prompt assembles the generation prompt from retrieved hits
// under a bounded context budget.
package prompt

import (
	"fmt"
	"strings"

	"github.com/auditcloud/ragdex/internal/domain"
)

// DefaultMaxContextChars bounds how much retrieved text enters the prompt.
const DefaultMaxContextChars = 2000

// metadataFields are payload fields surfaced in the rendered context,
// in display order, with their display labels.
var metadataFields = [][2]string{
	{"amount", "amount"},
	{"date", "date"},
	{"account_id", "account"},
	{"transaction_id", "transaction_id"},
	{"collection", "source"},
}

// Entry is one hit admitted into the prompt context.
type Entry struct {
	SourceIndex int    // 1-based ordinal used in citations
	HitID       string // record identifier backing the entry
	Rendered    string // text as it appears in the prompt
}

// Builder renders hits into a prompt, admitting entries greedily until
// the character budget is spent.
type Builder struct {
	maxContextChars int
}

// New creates a Builder. maxContextChars <= 0 applies the default budget.
func New(maxContextChars int) *Builder {
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}
	return &Builder{maxContextChars: maxContextChars}
}

// Build renders hits in order and packs them into a prompt. The first
// entry is always admitted even when it alone exceeds the budget, so a
// non-empty hit list always yields at least one source. Entries keep
// retrieval order and contiguous 1-based ordinals.
func (b *Builder) Build(query string, hits []domain.Hit) (string, []Entry) {
	entries := b.pack(hits)
	if len(entries) == 0 {
		return "", nil
	}

	blocks := make([]string, len(entries))
	for i, e := range entries {
		blocks[i] = e.Rendered
	}

	var sb strings.Builder
	sb.WriteString("You are an audit records assistant. Answer the question using only the context below.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(strings.Join(blocks, "\n\n"))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString("1. Answer based only on the context above. Do not use outside knowledge.\n")
	sb.WriteString("2. If the context does not contain the answer, say you don't know.\n")
	sb.WriteString("3. Cite the sources you used by ordinal, e.g. \"Sources: [Source 1, Source 2]\".\n")
	sb.WriteString("4. Keep all numeric values exactly as they appear in the context.\n\n")
	sb.WriteString("Answer:")

	return sb.String(), entries
}

// pack renders hits and admits them greedily against the budget.
// Separator characters between entries are not charged to the budget.
func (b *Builder) pack(hits []domain.Hit) []Entry {
	var entries []Entry
	used := 0
	for _, h := range hits {
		rendered := renderEntry(len(entries)+1, h)
		if len(entries) > 0 && used+len(rendered) > b.maxContextChars {
			break
		}
		entries = append(entries, Entry{
			SourceIndex: len(entries) + 1,
			HitID:       h.ID(),
			Rendered:    rendered,
		})
		used += len(rendered)
	}
	return entries
}

// renderEntry formats one hit as a context block: a header line with the
// ordinal, record id and any well-known metadata, then the body text.
func renderEntry(ordinal int, h domain.Hit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Source %d] id:%s", ordinal, h.ID())

	for _, mf := range metadataFields {
		if v, ok := h.Payload().Field(mf[0]); ok {
			fmt.Fprintf(&sb, ", %s: %s", mf[1], v)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(h.Payload().Text())
	return sb.String()
}
