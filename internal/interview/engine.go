package interview

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkpipe/inkpipe/internal/db"
	"github.com/inkpipe/inkpipe/internal/llm"
	"github.com/inkpipe/inkpipe/internal/pipeline"
)

// DefaultCompletionThreshold is the coverage total at which the interview is
// considered complete enough to synthesize a brief.
const DefaultCompletionThreshold = 95

// Metadata keys written by Complete.
const (
	MetaBrief    = "interview_brief"
	MetaCoverage = "interview_coverage"
)

// Store is the persistence surface the engine needs.
type Store interface {
	GetArtifact(ctx context.Context, id uuid.UUID) (*db.Artifact, error)
	UpdateArtifactStatus(ctx context.Context, id uuid.UUID, status pipeline.Status) error
	UpsertInterviewTurn(ctx context.Context, input *db.InterviewTurnInput) (*db.InterviewTurn, error)
	GetInterviewTurns(ctx context.Context, artifactID uuid.UUID) ([]db.InterviewTurn, error)
	MergeArtifactMetadata(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AppendArtifactEvent(ctx context.Context, artifactID uuid.UUID, event, detail string) error
}

// Engine coordinates interview sessions against the store. A client, when
// present, scores unscored turns and synthesizes missing briefs; a nil client
// leaves both to the caller.
type Engine struct {
	store     Store
	client    llm.Client
	threshold int
}

// NewEngine creates an interview engine. A zero threshold gets the default.
func NewEngine(store Store, client llm.Client, threshold int) *Engine {
	if threshold <= 0 {
		threshold = DefaultCompletionThreshold
	}
	return &Engine{store: store, client: client, threshold: threshold}
}

// NotFoundError reports that the target artifact does not exist.
type NotFoundError struct {
	ArtifactID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("artifact %s not found", e.ArtifactID)
}

// StartResult is returned by Start for both fresh and resumed sessions.
type StartResult struct {
	ArtifactID uuid.UUID          `json:"artifact_id"`
	IsResume   bool               `json:"is_resume"`
	Profile    map[string]any     `json:"profile,omitempty"`
	Turns      []db.InterviewTurn `json:"turns"`
	Coverage   CoverageScore      `json:"coverage"`
}

// Start opens an interview session. A draft artifact transitions to
// interviewing and gets an all-zero coverage snapshot; an artifact already
// interviewing resumes: previously saved turns and the last snapshot come
// back instead of an error.
func (e *Engine) Start(ctx context.Context, artifactID uuid.UUID) (*StartResult, error) {
	artifact, err := e.store.GetArtifact(ctx, artifactID)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, &NotFoundError{ArtifactID: artifactID}
	}

	if artifact.Status == pipeline.StatusInterviewing {
		turns, err := e.store.GetInterviewTurns(ctx, artifactID)
		if err != nil {
			return nil, err
		}
		coverage := CoverageScore{}
		if len(turns) > 0 {
			coverage = coverageFromMap(turns[len(turns)-1].CoverageScores)
		}
		return &StartResult{
			ArtifactID: artifactID,
			IsResume:   true,
			Profile:    profileFromMetadata(artifact.Metadata),
			Turns:      turns,
			Coverage:   coverage,
		}, nil
	}

	next, err := pipeline.Transition(artifact.Status, pipeline.StatusInterviewing, artifact.Type)
	if err != nil {
		return nil, err
	}
	if err := e.store.UpdateArtifactStatus(ctx, artifactID, next); err != nil {
		return nil, fmt.Errorf("starting interview: %w", err)
	}
	// Audit trail only; the session is already open.
	_ = e.store.AppendArtifactEvent(ctx, artifactID, "interview_started", "")

	return &StartResult{
		ArtifactID: artifactID,
		Profile:    profileFromMetadata(artifact.Metadata),
		Turns:      []db.InterviewTurn{},
		Coverage:   CoverageScore{},
	}, nil
}

// TurnInput is one question/answer pair with its coverage snapshot.
type TurnInput struct {
	QuestionNumber int           `json:"question_number"`
	Dimension      string        `json:"dimension"`
	Question       string        `json:"question"`
	Answer         string        `json:"answer"`
	Coverage       CoverageScore `json:"coverage"`
}

// TurnResult reports session progress after recording a turn.
type TurnResult struct {
	Turn            *db.InterviewTurn `json:"turn"`
	Total           int               `json:"total"`
	ReadyToComplete bool              `json:"ready_to_complete"`
	NextDimension   string            `json:"next_dimension"`
}

// RecordTurn upserts one turn keyed by (artifact, question number). Repeat
// calls with the same question number overwrite rather than duplicate.
func (e *Engine) RecordTurn(ctx context.Context, artifactID uuid.UUID, input TurnInput) (*TurnResult, error) {
	if input.QuestionNumber < 1 {
		return nil, fmt.Errorf("question number must be positive, got %d", input.QuestionNumber)
	}

	artifact, err := e.store.GetArtifact(ctx, artifactID)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, &NotFoundError{ArtifactID: artifactID}
	}
	if artifact.Status != pipeline.StatusInterviewing {
		return nil, &pipeline.StateError{
			Current:   artifact.Status,
			Requested: pipeline.StatusInterviewing,
			Expected:  []pipeline.Status{pipeline.StatusInterviewing},
		}
	}

	if input.Coverage == (CoverageScore{}) && e.client != nil {
		scored, err := e.scoreAnswer(ctx, input.Answer)
		if err != nil {
			return nil, err
		}
		input.Coverage = scored
	}
	if err := input.Coverage.Validate(); err != nil {
		return nil, err
	}

	turn, err := e.store.UpsertInterviewTurn(ctx, &db.InterviewTurnInput{
		ArtifactID:     artifactID,
		QuestionNumber: input.QuestionNumber,
		Dimension:      input.Dimension,
		Question:       input.Question,
		Answer:         input.Answer,
		CoverageScores: input.Coverage.toMap(),
	})
	if err != nil {
		return nil, fmt.Errorf("recording turn %d: %w", input.QuestionNumber, err)
	}

	total := input.Coverage.Total()
	return &TurnResult{
		Turn:            turn,
		Total:           total,
		ReadyToComplete: total >= e.threshold,
		NextDimension:   input.Coverage.WeakestDimension(),
	}, nil
}

// CompleteInput carries the full session state for final synthesis.
type CompleteInput struct {
	Turns    []TurnInput   `json:"turns"`
	Coverage CoverageScore `json:"coverage"`
	Brief    string        `json:"brief"`
}

// CompleteResult reports what Complete persisted.
type CompleteResult struct {
	ArtifactID uuid.UUID     `json:"artifact_id"`
	TurnCount  int           `json:"turn_count"`
	Coverage   CoverageScore `json:"coverage"`
}

// Complete finalizes the session: every turn is upserted (covering gaps from
// missed incremental saves) and the brief is merged into artifact metadata.
// The status deliberately stays at interviewing; the research stage advances
// it, not this operation.
func (e *Engine) Complete(ctx context.Context, artifactID uuid.UUID, input CompleteInput) (*CompleteResult, error) {
	if err := input.Coverage.Validate(); err != nil {
		return nil, err
	}
	if input.Brief == "" && e.client == nil {
		return nil, fmt.Errorf("brief is required to complete an interview")
	}

	artifact, err := e.store.GetArtifact(ctx, artifactID)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, &NotFoundError{ArtifactID: artifactID}
	}
	if artifact.Status != pipeline.StatusInterviewing {
		return nil, &pipeline.StateError{
			Current:   artifact.Status,
			Requested: pipeline.StatusInterviewing,
			Expected:  []pipeline.Status{pipeline.StatusInterviewing},
		}
	}

	if input.Brief == "" {
		brief, err := e.synthesizeBrief(ctx, input.Turns)
		if err != nil {
			return nil, err
		}
		input.Brief = brief
	}

	for _, turn := range input.Turns {
		if _, err := e.store.UpsertInterviewTurn(ctx, &db.InterviewTurnInput{
			ArtifactID:     artifactID,
			QuestionNumber: turn.QuestionNumber,
			Dimension:      turn.Dimension,
			Question:       turn.Question,
			Answer:         turn.Answer,
			CoverageScores: turn.Coverage.toMap(),
		}); err != nil {
			return nil, fmt.Errorf("upserting turn %d: %w", turn.QuestionNumber, err)
		}
	}

	// Merge, not replace: existing metadata keys survive.
	updates := map[string]any{
		MetaBrief:    input.Brief,
		MetaCoverage: input.Coverage.toMap(),
	}
	if err := e.store.MergeArtifactMetadata(ctx, artifactID, updates); err != nil {
		return nil, fmt.Errorf("saving brief: %w", err)
	}

	_ = e.store.AppendArtifactEvent(ctx, artifactID, "interview_completed",
		fmt.Sprintf("coverage total %d", input.Coverage.Total()))

	return &CompleteResult{
		ArtifactID: artifactID,
		TurnCount:  len(input.Turns),
		Coverage:   input.Coverage,
	}, nil
}

// profileFromMetadata pulls the caller profile block out of artifact metadata.
func profileFromMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	if profile, ok := metadata["author_profile"].(map[string]any); ok {
		return profile
	}
	return nil
}
