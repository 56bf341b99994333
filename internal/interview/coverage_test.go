package interview

import (
	"errors"
	"testing"
)

func TestCoverageTotal(t *testing.T) {
	c := CoverageScore{Background: 19, Challenge: 19, Solution: 20, Outcome: 20, Reflection: 18}
	if got := c.Total(); got != 96 {
		t.Errorf("Total() = %d, want 96", got)
	}
	var zero CoverageScore
	if zero.Total() != 0 {
		t.Errorf("zero total = %d, want 0", zero.Total())
	}
}

func TestCoverageValidate(t *testing.T) {
	tests := []struct {
		name    string
		score   CoverageScore
		wantDim string
	}{
		{"all in range", CoverageScore{Background: 0, Challenge: 20, Solution: 10}, ""},
		{"negative", CoverageScore{Outcome: -1}, DimOutcome},
		{"over max", CoverageScore{Reflection: 21}, DimReflection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.score.Validate()
			if tt.wantDim == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var scoreErr *ScoreError
			if !errors.As(err, &scoreErr) {
				t.Fatalf("Validate() = %v, want *ScoreError", err)
			}
			if scoreErr.Dimension != tt.wantDim {
				t.Errorf("dimension = %s, want %s", scoreErr.Dimension, tt.wantDim)
			}
		})
	}
}

func TestCoverageRoundTrip(t *testing.T) {
	c := CoverageScore{Background: 3, Challenge: 7, Solution: 11, Outcome: 15, Reflection: 19}
	got := coverageFromMap(c.toMap())
	if got != c {
		t.Errorf("round trip = %+v, want %+v", got, c)
	}
}

func TestCoverageFromMapIgnoresUnknownKeys(t *testing.T) {
	got := coverageFromMap(map[string]int{"background": 5, "vibes": 99})
	if got.Background != 5 || got.Total() != 5 {
		t.Errorf("coverageFromMap = %+v, want only background set", got)
	}
}
