// Package interview runs the resumable, coverage-driven Q&A session that
// precedes research for case-study artifacts.
package interview

import "fmt"

// Coverage dimension names, in canonical order.
const (
	DimBackground = "background"
	DimChallenge  = "challenge"
	DimSolution   = "solution"
	DimOutcome    = "outcome"
	DimReflection = "reflection"
)

// DimensionMax is the score ceiling for each dimension.
const DimensionMax = 20

// Dimensions returns the canonical dimension order.
func Dimensions() []string {
	return []string{DimBackground, DimChallenge, DimSolution, DimOutcome, DimReflection}
}

// CoverageScore holds one snapshot of the five narrative dimension scores.
type CoverageScore struct {
	Background int `json:"background"`
	Challenge  int `json:"challenge"`
	Solution   int `json:"solution"`
	Outcome    int `json:"outcome"`
	Reflection int `json:"reflection"`
}

// Total sums all dimensions.
func (c CoverageScore) Total() int {
	return c.Background + c.Challenge + c.Solution + c.Outcome + c.Reflection
}

// Validate checks each dimension is within [0, DimensionMax].
func (c CoverageScore) Validate() error {
	for name, score := range c.toMap() {
		if score < 0 || score > DimensionMax {
			return &ScoreError{Dimension: name, Score: score}
		}
	}
	return nil
}

// WeakestDimension returns the lowest-scored dimension; ties resolve in
// canonical order. Used to steer the next question.
func (c CoverageScore) WeakestDimension() string {
	scores := c.toMap()
	weakest := DimBackground
	for _, dim := range Dimensions() {
		if scores[dim] < scores[weakest] {
			weakest = dim
		}
	}
	return weakest
}

func (c CoverageScore) toMap() map[string]int {
	return map[string]int{
		DimBackground: c.Background,
		DimChallenge:  c.Challenge,
		DimSolution:   c.Solution,
		DimOutcome:    c.Outcome,
		DimReflection: c.Reflection,
	}
}

// coverageFromMap rebuilds a snapshot from its stored form. Unknown keys are
// ignored, missing keys read as zero.
func coverageFromMap(m map[string]int) CoverageScore {
	return CoverageScore{
		Background: m[DimBackground],
		Challenge:  m[DimChallenge],
		Solution:   m[DimSolution],
		Outcome:    m[DimOutcome],
		Reflection: m[DimReflection],
	}
}

// ScoreError is the typed rejection for an out-of-range dimension score.
type ScoreError struct {
	Dimension string
	Score     int
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("coverage score for %s is %d, must be within [0, %d]", e.Dimension, e.Score, DimensionMax)
}
