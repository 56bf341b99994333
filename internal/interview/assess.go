package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inkpipe/inkpipe/internal/llm"
	"github.com/inkpipe/inkpipe/internal/schemas"
)

// scoreAnswer asks the model to score a single answer across the narrative
// dimensions. Used when a turn arrives without coverage scores.
func (e *Engine) scoreAnswer(ctx context.Context, answer string) (CoverageScore, error) {
	if strings.TrimSpace(answer) == "" {
		return CoverageScore{}, fmt.Errorf("cannot score an empty answer")
	}

	prompt := llm.BuildExtractionPrompt(llm.CoverageAssessmentSchema(), answer)
	out, err := e.client.GenerateJSON(ctx, prompt, llm.DefaultOptions(llm.TierLite))
	if err != nil {
		return CoverageScore{}, fmt.Errorf("scoring answer: %w", err)
	}
	if err := schemas.Validate(schemas.SchemaCoverage, out); err != nil {
		return CoverageScore{}, fmt.Errorf("coverage assessment rejected: %w", err)
	}

	var scored CoverageScore
	if err := json.Unmarshal([]byte(out), &scored); err != nil {
		return CoverageScore{}, fmt.Errorf("parsing coverage assessment: %w", err)
	}
	return scored, nil
}

// synthesizeBrief condenses the recorded turns into a structured brief when
// the caller completes without supplying one.
func (e *Engine) synthesizeBrief(ctx context.Context, turns []TurnInput) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("cannot synthesize a brief without recorded turns")
	}

	var transcript strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&transcript, "Q%d [%s]: %s\nA: %s\n\n", t.QuestionNumber, t.Dimension, t.Question, t.Answer)
	}

	prompt := llm.BuildExtractionPrompt(llm.InterviewBriefSchema(), transcript.String())
	out, err := e.client.GenerateJSON(ctx, prompt, llm.DefaultOptions(llm.TierStandard))
	if err != nil {
		return "", fmt.Errorf("synthesizing brief: %w", err)
	}
	if err := schemas.Validate(schemas.SchemaInterviewBrief, out); err != nil {
		return "", fmt.Errorf("synthesized brief rejected: %w", err)
	}
	return out, nil
}
