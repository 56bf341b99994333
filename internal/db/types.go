package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkpipe/inkpipe/internal/pipeline"
)

// Artifact represents one content item progressing through the pipeline
type Artifact struct {
	ID        uuid.UUID             `json:"id"`
	OwnerID   uuid.UUID             `json:"owner_id"`
	Type      pipeline.ArtifactType `json:"type"`
	Status    pipeline.Status       `json:"status"`
	Title     string                `json:"title"`
	Topic     string                `json:"topic"`
	Content   string                `json:"content,omitempty"`
	Skeleton  *string               `json:"skeleton,omitempty"`
	Metadata  map[string]any        `json:"metadata,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// ArtifactInput holds the fields needed to create an artifact
type ArtifactInput struct {
	OwnerID uuid.UUID
	Type    pipeline.ArtifactType
	Title   string
	Topic   string
}

// ResearchResult represents one persisted source hit for an artifact
type ResearchResult struct {
	ID             uuid.UUID `json:"id"`
	ArtifactID     uuid.UUID `json:"artifact_id"`
	SourceType     string    `json:"source_type"`
	SourceName     string    `json:"source_name"`
	SourceURL      *string   `json:"source_url,omitempty"`
	Excerpt        string    `json:"excerpt"`
	RelevanceScore float64   `json:"relevance_score"`
	CreatedAt      time.Time `json:"created_at"`
}

// ResearchResultInput holds the fields for one research result insert
type ResearchResultInput struct {
	ArtifactID     uuid.UUID
	SourceType     string
	SourceName     string
	SourceURL      string
	Excerpt        string
	RelevanceScore float64
}

// InterviewTurn represents one question/answer pair in an adaptive interview.
// The coverage snapshot records all five dimension scores as of this turn.
type InterviewTurn struct {
	ID             uuid.UUID      `json:"id"`
	ArtifactID     uuid.UUID      `json:"artifact_id"`
	QuestionNumber int            `json:"question_number"`
	Dimension      string         `json:"dimension"`
	Question       string         `json:"question"`
	Answer         string         `json:"answer"`
	CoverageScores map[string]int `json:"coverage_scores"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// InterviewTurnInput holds the fields for one turn upsert
type InterviewTurnInput struct {
	ArtifactID     uuid.UUID
	QuestionNumber int
	Dimension      string
	Question       string
	Answer         string
	CoverageScores map[string]int
}

// ArtifactEvent is one human-readable audit entry for an artifact
type ArtifactEvent struct {
	ID         uuid.UUID `json:"id"`
	ArtifactID uuid.UUID `json:"artifact_id"`
	Event      string    `json:"event"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
