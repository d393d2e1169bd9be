package match

import (
	"sort"
)

// Confidence thresholds for auto-accepting matches.
const (
	// DefaultMinScore is the minimum score for auto-acceptance.
	DefaultMinScore = 0.85
	// DefaultMinGap is the minimum score gap between top candidates.
	DefaultMinGap = 0.1
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.05
	// SuggestionThreshold is the score a candidate needs to be suggested.
	SuggestionThreshold = 0.5
)

// Entry is a known name and the Box field it resolves to.
type Entry struct {
	// Name is the known Conga tag or field name.
	Name string
	// Target is the Box field the name resolves to.
	Target string
	// Source tells where the entry came from (schema, csv, sql...).
	Source string
}

// Candidate represents a potential resolution for an unresolved tag.
type Candidate struct {
	Entry

	// Score is the normalized Levenshtein similarity (0-1).
	Score float64

	// Normalized names, kept for explanation.
	NormalizedQuery string
	NormalizedName  string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Rank scores every entry against query and returns the candidates sorted
// by score (descending). Entries sharing a name are scored once, the first
// one winning.
func Rank(query string, entries []Entry) CandidateList {
	queryNorm := NormalizeIdent(query)
	seen := make(map[string]struct{}, len(entries))

	candidates := make(CandidateList, 0, len(entries))

	for _, e := range entries {
		key := NormalizeIdent(e.Name)
		if key == "" {
			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		candidates = append(candidates, Candidate{
			Entry:           e,
			Score:           Similarity(query, e.Name),
			NormalizedQuery: queryNorm,
			NormalizedName:  key,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	if n < 0 {
		return nil
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates both reach minScore,
// point at different targets and are within threshold of each other.
func (c CandidateList) IsAmbiguous(minScore, threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	if c[1].Score < minScore || c[0].Target == c[1].Target {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}

// AboveThreshold returns candidates with a score strictly above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score > threshold {
			result = append(result, cand)
		}
	}

	return result
}

// HighConfidence returns the best candidate if it's significantly better than alternatives.
// Returns nil if no clear winner exists. A runner-up that resolves to the
// same target does not count against the winner.
func (c CandidateList) HighConfidence(minScore, minGap float64) *Candidate {
	best := c.Best()
	if best == nil || best.Score < minScore {
		return nil
	}

	for _, other := range c[1:] {
		if other.Target == best.Target {
			continue
		}

		if best.Score-other.Score < minGap {
			return nil
		}

		break
	}

	return best
}

// Names returns the candidate names in rank order.
func (c CandidateList) Names() []string {
	if len(c) == 0 {
		return nil
	}

	names := make([]string, len(c))
	for i, cand := range c {
		names[i] = cand.Name
	}

	return names
}
