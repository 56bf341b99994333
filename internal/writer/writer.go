// Package writer runs the generation stages that turn research and interview
// material into a publishable draft: skeleton, draft, humanize, finalize.
package writer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/inkpipe/inkpipe/internal/db"
	"github.com/inkpipe/inkpipe/internal/llm"
	"github.com/inkpipe/inkpipe/internal/pipeline"
	"github.com/inkpipe/inkpipe/internal/prompts"
	"github.com/inkpipe/inkpipe/internal/schemas"
)

// Store is the persistence surface the writer stages need.
type Store interface {
	GetArtifact(ctx context.Context, id uuid.UUID) (*db.Artifact, error)
	GetResearchResults(ctx context.Context, artifactID uuid.UUID) ([]db.ResearchResult, error)
	UpdateArtifactSkeleton(ctx context.Context, id uuid.UUID, skeleton string) error
	UpdateArtifactContent(ctx context.Context, id uuid.UUID, content string) error
	UpdateArtifactStatus(ctx context.Context, id uuid.UUID, status pipeline.Status) error
	AppendArtifactEvent(ctx context.Context, artifactID uuid.UUID, event, detail string) error
}

// NotFoundError indicates the artifact does not exist.
type NotFoundError struct {
	ArtifactID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("artifact not found: %s", e.ArtifactID)
}

// Engine executes the writing stages against the store and LLM client.
type Engine struct {
	store  Store
	client llm.Client
}

// NewEngine builds a writer engine.
func NewEngine(store Store, client llm.Client) *Engine {
	return &Engine{store: store, client: client}
}

// BuildSkeleton generates and persists an outline from the artifact's
// research results and interview brief, advancing the status to
// skeleton_ready.
func (e *Engine) BuildSkeleton(ctx context.Context, artifactID uuid.UUID) (*db.Artifact, error) {
	artifact, err := e.loadForStage(ctx, artifactID, pipeline.StatusSkeletonReady)
	if err != nil {
		return nil, err
	}

	results, err := e.store.GetResearchResults(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("loading research results: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("artifact %s has no research results to outline from", artifactID)
	}

	brief, _ := artifact.Metadata["interview_brief"].(string)

	template := prompts.MustGet("writing.json", "build-skeleton")
	prompt := prompts.Format(template, map[string]string{
		"ArtifactType":   string(artifact.Type),
		"Title":          artifact.Title,
		"Topic":          artifact.Topic,
		"ResearchDigest": e.digestResults(ctx, artifact, results),
		"InterviewBrief": brief,
	})

	skeletonJSON, err := e.client.GenerateJSON(ctx, prompt, llm.DefaultOptions(llm.TierAdvanced))
	if err != nil {
		return nil, fmt.Errorf("generating skeleton: %w", err)
	}
	if err := schemas.Validate(schemas.SchemaSkeleton, skeletonJSON); err != nil {
		return nil, fmt.Errorf("skeleton failed schema validation: %w", err)
	}

	if err := e.store.UpdateArtifactSkeleton(ctx, artifactID, skeletonJSON); err != nil {
		return nil, fmt.Errorf("saving skeleton: %w", err)
	}
	return e.advance(ctx, artifact, pipeline.StatusSkeletonReady, "skeleton_built", fmt.Sprintf("outline built from %d research results", len(results)))
}

// WriteDraft generates the full draft from the saved skeleton and advances
// the status to writing.
func (e *Engine) WriteDraft(ctx context.Context, artifactID uuid.UUID) (*db.Artifact, error) {
	artifact, err := e.loadForStage(ctx, artifactID, pipeline.StatusWriting)
	if err != nil {
		return nil, err
	}
	if artifact.Skeleton == nil || *artifact.Skeleton == "" {
		return nil, fmt.Errorf("artifact %s has no skeleton to draft from", artifactID)
	}

	template := prompts.MustGet("writing.json", "write-draft")
	prompt := prompts.Format(template, map[string]string{
		"ArtifactType": string(artifact.Type),
		"Title":        artifact.Title,
		"Skeleton":     *artifact.Skeleton,
	})

	draft, err := e.client.GenerateContent(ctx, prompt, llm.Options{Tier: llm.TierAdvanced, Temperature: 0.7})
	if err != nil {
		return nil, fmt.Errorf("generating draft: %w", err)
	}
	if strings.TrimSpace(draft) == "" {
		return nil, fmt.Errorf("model returned an empty draft for artifact %s", artifactID)
	}

	if err := e.store.UpdateArtifactContent(ctx, artifactID, draft); err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}
	return e.advance(ctx, artifact, pipeline.StatusWriting, "draft_written", fmt.Sprintf("draft of %d characters", len(draft)))
}

// HumanizeDraft runs the revision pass over the current draft and advances
// the status to creating_visuals.
func (e *Engine) HumanizeDraft(ctx context.Context, artifactID uuid.UUID) (*db.Artifact, error) {
	artifact, err := e.loadForStage(ctx, artifactID, pipeline.StatusCreatingVisuals)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(artifact.Content) == "" {
		return nil, fmt.Errorf("artifact %s has no draft to humanize", artifactID)
	}

	template := prompts.MustGet("writing.json", "humanize-draft")
	prompt := prompts.Format(template, map[string]string{
		"Draft": artifact.Content,
	})

	revised, err := e.client.GenerateContent(ctx, prompt, llm.Options{Tier: llm.TierAdvanced, Temperature: 0.5})
	if err != nil {
		return nil, fmt.Errorf("humanizing draft: %w", err)
	}
	if strings.TrimSpace(revised) == "" {
		return nil, fmt.Errorf("model returned an empty revision for artifact %s", artifactID)
	}

	if err := e.store.UpdateArtifactContent(ctx, artifactID, revised); err != nil {
		return nil, fmt.Errorf("saving revised draft: %w", err)
	}
	return e.advance(ctx, artifact, pipeline.StatusCreatingVisuals, "draft_humanized", "revision pass applied")
}

// Finalize moves the artifact to ready. No generation happens here; it is
// the explicit gate before publishing.
func (e *Engine) Finalize(ctx context.Context, artifactID uuid.UUID) (*db.Artifact, error) {
	artifact, err := e.loadForStage(ctx, artifactID, pipeline.StatusReady)
	if err != nil {
		return nil, err
	}
	return e.advance(ctx, artifact, pipeline.StatusReady, "finalized", "marked ready for publishing")
}

// loadForStage fetches the artifact and checks the requested transition is
// legal before any generation work is spent.
func (e *Engine) loadForStage(ctx context.Context, artifactID uuid.UUID, target pipeline.Status) (*db.Artifact, error) {
	artifact, err := e.store.GetArtifact(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("loading artifact: %w", err)
	}
	if artifact == nil {
		return nil, &NotFoundError{ArtifactID: artifactID}
	}
	if _, err := pipeline.Transition(artifact.Status, target, artifact.Type); err != nil {
		return nil, err
	}
	return artifact, nil
}

// advance persists the status change and audit event after a stage succeeds.
func (e *Engine) advance(ctx context.Context, artifact *db.Artifact, status pipeline.Status, event, detail string) (*db.Artifact, error) {
	if artifact.Status != status {
		if err := e.store.UpdateArtifactStatus(ctx, artifact.ID, status); err != nil {
			return nil, fmt.Errorf("updating status: %w", err)
		}
		artifact.Status = status
	}
	if err := e.store.AppendArtifactEvent(ctx, artifact.ID, event, detail); err != nil {
		log.Printf("[WRITER] artifact=%s event append failed: %v", artifact.ID, err)
	}
	return artifact, nil
}

// digestResults distills raw research rows into themed evidence before the
// skeleton prompt sees them. A digest that fails or comes back malformed is
// discarded and the raw listing is used instead.
func (e *Engine) digestResults(ctx context.Context, artifact *db.Artifact, results []db.ResearchResult) string {
	raw := formatResults(results)

	prompt := llm.BuildExtractionPrompt(llm.ResearchDigestSchema(),
		fmt.Sprintf("Topic: %s\n\nFindings:\n%s", artifact.Topic, raw))
	digest, err := e.client.GenerateJSON(ctx, prompt, llm.DefaultOptions(llm.TierStandard))
	if err != nil {
		log.Printf("[WRITER] artifact=%s research digest failed, using raw results: %v", artifact.ID, err)
		return raw
	}
	if err := schemas.Validate(schemas.SchemaResearchDigest, digest); err != nil {
		log.Printf("[WRITER] artifact=%s research digest malformed, using raw results: %v", artifact.ID, err)
		return raw
	}
	return digest
}

// formatResults renders research rows into the plain-text digest block the
// skeleton prompt consumes.
func formatResults(results []db.ResearchResult) string {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("- [%s] %s", r.SourceType, r.SourceName))
		if r.SourceURL != nil && *r.SourceURL != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", *r.SourceURL))
		}
		sb.WriteString(fmt.Sprintf(": %s (relevance %.2f)\n", r.Excerpt, r.RelevanceScore))
	}
	return sb.String()
}
