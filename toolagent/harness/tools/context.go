package tools

import (
	"sort"
	"strings"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

// Snippet is a retrieved chunk with a score and token estimate.
type Snippet struct {
	Text       string
	Score      float64 // higher is better
	TokenCount int
	Source     string // optional provenance
}

// Budget specifies maximum tokens allocated to context packing.
type Budget struct {
	MaxContextTokens int // hard cap for context snippets
	MaxSnippets      int // safety bound on number of chunks
}

// ContextAssembler selects and packs context snippets within a token budget.
type ContextAssembler struct {
	defaultBudget Budget
	// TokenEstimator should be a fast heuristic; we avoid binding to a specific tokenizer here.
	TokenEstimator func(s string) int
}

func NewContextAssembler(b Budget, est func(s string) int) *ContextAssembler {
	if est == nil {
		est = func(s string) int { // rough heuristic: ~4 chars per token
			l := len(s)
			if l == 0 {
				return 0
			}
			return (l + 3) / 4
		}
	}
	return &ContextAssembler{defaultBudget: b, TokenEstimator: est}
}

// SnippetsFromHits converts store hits into snippets.
func SnippetsFromHits(hits []ports.ScoredDocument) []Snippet {
	out := make([]Snippet, 0, len(hits))
	for _, h := range hits {
		out = append(out, Snippet{Text: h.Content, Score: h.Score, Source: h.Source})
	}
	return out
}

// Pack sorts snippets by score desc and packs up to budget, normalizing text.
// Snippets that do not fit are skipped so smaller ones further down can still
// be used.
func (a *ContextAssembler) Pack(snippets []Snippet, b *Budget) []string {
	if b == nil {
		b = &a.defaultBudget
	}
	if len(snippets) == 0 || b.MaxContextTokens <= 0 || b.MaxSnippets <= 0 {
		return nil
	}

	sorted := make([]Snippet, len(snippets))
	copy(sorted, snippets)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	remaining := b.MaxContextTokens
	packed := make([]string, 0, min(len(sorted), b.MaxSnippets))

	norm := func(s string) string { return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n")) }

	for _, sn := range sorted {
		if len(packed) >= b.MaxSnippets || remaining <= 0 {
			break
		}
		if sn.TokenCount <= 0 {
			sn.TokenCount = a.TokenEstimator(sn.Text)
		}
		if sn.TokenCount > remaining {
			continue
		}
		packed = append(packed, norm(sn.Text))
		remaining -= sn.TokenCount
	}

	return packed
}
