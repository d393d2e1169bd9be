package match

import (
	"slices"
	"testing"
)

func entries() []Entry {
	return []Entry{
		{Name: "{{Account_Name}}", Target: "account.name", Source: "schema"},
		{Name: "{{Amount}}", Target: "opportunity.amount", Source: "csv"},
		{Name: "AccountName", Target: "account.display_name", Source: "sql"},
		{Name: "{{Close_Date}}", Target: "opportunity.close_date", Source: "csv"},
	}
}

func TestRank(t *testing.T) {
	candidates := Rank("{{Acount_Name}}", entries())

	// "{{Account_Name}}" and "AccountName" normalize alike; the first wins.
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %v", len(candidates), candidates.Names())
	}

	best := candidates.Best()
	if best == nil || best.Name != "{{Account_Name}}" || best.Target != "account.name" {
		t.Fatalf("unexpected best candidate: %+v", best)
	}

	if diff := best.Score - (1.0 - 1.0/11.0); diff < -0.001 || diff > 0.001 {
		t.Errorf("best score = %f, want %f", best.Score, 1.0-1.0/11.0)
	}

	if best.NormalizedQuery != "acountname" || best.NormalizedName != "accountname" {
		t.Errorf("unexpected normalized names: %q, %q", best.NormalizedQuery, best.NormalizedName)
	}

	if got := candidates.HighConfidence(DefaultMinScore, DefaultMinGap); got == nil || got.Name != best.Name {
		t.Errorf("expected high-confidence match, got %+v", got)
	}
}

func TestRank_Determinism(t *testing.T) {
	list := []Entry{
		{Name: "Beta", Target: "b"},
		{Name: "Alpha", Target: "a"},
		{Name: "Gamma", Target: "g"},
	}

	first := Rank("Zzz", list)
	for range 10 {
		if got := Rank("Zzz", list); !slices.Equal(got.Names(), first.Names()) {
			t.Fatalf("non-deterministic ranking: %v vs %v", got.Names(), first.Names())
		}
	}

	if !slices.Equal(first.Names(), []string{"Alpha", "Beta", "Gamma"}) {
		t.Errorf("equal scores should sort by name, got %v", first.Names())
	}
}

func TestRank_SkipsEmptyNames(t *testing.T) {
	candidates := Rank("Name", []Entry{{Name: "{{ }}"}, {Name: ""}, {Name: "Name", Target: "n"}})
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %v", candidates.Names())
	}
}

func TestCandidateList_Top(t *testing.T) {
	candidates := CandidateList{
		{Entry: Entry{Name: "A"}, Score: 0.9},
		{Entry: Entry{Name: "B"}, Score: 0.8},
		{Entry: Entry{Name: "C"}, Score: 0.7},
	}

	if top2 := candidates.Top(2); len(top2) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(top2))
	}

	if top10 := candidates.Top(10); len(top10) != 3 {
		t.Errorf("Expected 3 candidates (all), got %d", len(top10))
	}

	if none := candidates.Top(-1); none != nil {
		t.Errorf("Expected nil for negative n, got %v", none)
	}
}

func TestCandidateList_IsAmbiguous(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		targets  []string
		expected bool
	}{
		{
			name:     "clear winner",
			scores:   []float64{0.95, 0.86},
			targets:  []string{"a", "b"},
			expected: false,
		},
		{
			name:     "ambiguous",
			scores:   []float64{0.9, 0.88},
			targets:  []string{"a", "b"},
			expected: true,
		},
		{
			name:     "same target is not ambiguous",
			scores:   []float64{0.9, 0.9},
			targets:  []string{"a", "a"},
			expected: false,
		},
		{
			name:     "runner-up below min score",
			scores:   []float64{0.86, 0.84},
			targets:  []string{"a", "b"},
			expected: false,
		},
		{
			name:     "single candidate",
			scores:   []float64{0.9},
			targets:  []string{"a"},
			expected: false,
		},
		{
			name:     "no candidates",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var candidates CandidateList
			for i, score := range tt.scores {
				candidates = append(candidates, Candidate{
					Entry: Entry{Name: string(rune('A' + i)), Target: tt.targets[i]},
					Score: score,
				})
			}

			if got := candidates.IsAmbiguous(DefaultMinScore, DefaultAmbiguityThreshold); got != tt.expected {
				t.Errorf("IsAmbiguous() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCandidateList_AboveThreshold(t *testing.T) {
	candidates := CandidateList{
		{Entry: Entry{Name: "A"}, Score: 0.9},
		{Entry: Entry{Name: "B"}, Score: 0.5},
		{Entry: Entry{Name: "C"}, Score: 0.3},
	}

	above := candidates.AboveThreshold(SuggestionThreshold)
	if !slices.Equal(above.Names(), []string{"A"}) {
		t.Errorf("AboveThreshold() = %v, want [A]", above.Names())
	}
}

func TestCandidateList_HighConfidence(t *testing.T) {
	tests := []struct {
		name       string
		candidates CandidateList
		expected   string
	}{
		{
			name:       "empty",
			candidates: nil,
		},
		{
			name: "below min score",
			candidates: CandidateList{
				{Entry: Entry{Name: "A", Target: "a"}, Score: 0.8},
			},
		},
		{
			name: "sole candidate",
			candidates: CandidateList{
				{Entry: Entry{Name: "A", Target: "a"}, Score: 0.9},
			},
			expected: "A",
		},
		{
			name: "gap too small",
			candidates: CandidateList{
				{Entry: Entry{Name: "A", Target: "a"}, Score: 0.9},
				{Entry: Entry{Name: "B", Target: "b"}, Score: 0.85},
			},
		},
		{
			name: "runner-up with same target is skipped",
			candidates: CandidateList{
				{Entry: Entry{Name: "A", Target: "a"}, Score: 0.9},
				{Entry: Entry{Name: "B", Target: "a"}, Score: 0.89},
				{Entry: Entry{Name: "C", Target: "c"}, Score: 0.6},
			},
			expected: "A",
		},
		{
			name: "clear gap",
			candidates: CandidateList{
				{Entry: Entry{Name: "A", Target: "a"}, Score: 1.0},
				{Entry: Entry{Name: "B", Target: "b"}, Score: 0.7},
			},
			expected: "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.candidates.HighConfidence(DefaultMinScore, DefaultMinGap)
			switch {
			case tt.expected == "" && got != nil:
				t.Errorf("HighConfidence() = %q, want nil", got.Name)
			case tt.expected != "" && (got == nil || got.Name != tt.expected):
				t.Errorf("HighConfidence() = %+v, want %q", got, tt.expected)
			}
		})
	}
}
