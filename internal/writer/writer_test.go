package writer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/inkpipe/inkpipe/internal/db"
	"github.com/inkpipe/inkpipe/internal/llm"
	"github.com/inkpipe/inkpipe/internal/pipeline"
)

type fakeStore struct {
	artifact *db.Artifact
	results  []db.ResearchResult

	savedSkeleton string
	savedContent  string
	events        []string
}

func (s *fakeStore) GetArtifact(_ context.Context, id uuid.UUID) (*db.Artifact, error) {
	if s.artifact == nil || s.artifact.ID != id {
		return nil, nil
	}
	return s.artifact, nil
}

func (s *fakeStore) GetResearchResults(_ context.Context, _ uuid.UUID) ([]db.ResearchResult, error) {
	return s.results, nil
}

func (s *fakeStore) UpdateArtifactSkeleton(_ context.Context, _ uuid.UUID, skeleton string) error {
	s.savedSkeleton = skeleton
	s.artifact.Skeleton = &skeleton
	return nil
}

func (s *fakeStore) UpdateArtifactContent(_ context.Context, _ uuid.UUID, content string) error {
	s.savedContent = content
	s.artifact.Content = content
	return nil
}

func (s *fakeStore) UpdateArtifactStatus(_ context.Context, _ uuid.UUID, status pipeline.Status) error {
	s.artifact.Status = status
	return nil
}

func (s *fakeStore) AppendArtifactEvent(_ context.Context, _ uuid.UUID, event, _ string) error {
	s.events = append(s.events, event)
	return nil
}

// fakeClient returns canned responses and records prompts. jsonQueue, when
// set, is consumed one response per call before jsonResponse applies.
type fakeClient struct {
	textResponse string
	jsonResponse string
	jsonQueue    []string
	err          error
	prompts      []string
}

func (c *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.Options) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.textResponse, c.err
}

func (c *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.Options) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	if len(c.jsonQueue) > 0 {
		next := c.jsonQueue[0]
		c.jsonQueue = c.jsonQueue[1:]
		return next, nil
	}
	return c.jsonResponse, nil
}

func (c *fakeClient) GetModel(tier llm.ModelTier) string { return string(tier) }

func (c *fakeClient) Close() error { return nil }

const validSkeleton = `{
	"working_title": "The Boring Option Won",
	"sections": [
		{"heading": "Where we started", "purpose": "Establish the daily batch pain."},
		{"heading": "The decision", "purpose": "Why streaming over a faster batch."},
		{"heading": "The cutover", "purpose": "How the switch happened without loss."}
	]
}`

func newArtifact(status pipeline.Status) *db.Artifact {
	return &db.Artifact{
		ID:     uuid.New(),
		Type:   pipeline.TypeLongForm,
		Status: status,
		Title:  "The Boring Option Won",
		Topic:  "streaming migration",
	}
}

func someResults() []db.ResearchResult {
	url := "https://medium.example.com/post"
	return []db.ResearchResult{
		{SourceType: "medium", SourceName: "medium result", SourceURL: &url, Excerpt: "streaming cut lag", RelevanceScore: 0.91},
		{SourceType: "github", SourceName: "github result", Excerpt: "kafka connect configs", RelevanceScore: 0.84},
	}
}

func TestBuildSkeleton(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusResearching), results: someResults()}
	client := &fakeClient{jsonResponse: validSkeleton}
	engine := NewEngine(store, client)

	artifact, err := engine.BuildSkeleton(context.Background(), store.artifact.ID)
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	if artifact.Status != pipeline.StatusSkeletonReady {
		t.Errorf("status = %s, want skeleton_ready", artifact.Status)
	}
	if store.savedSkeleton != validSkeleton {
		t.Error("skeleton not persisted")
	}
	// Call one digests the results, call two builds the outline. The canned
	// response is not a valid digest, so the raw listing carries through.
	if len(client.prompts) != 2 {
		t.Fatalf("client called %d times, want 2", len(client.prompts))
	}
	if !strings.Contains(client.prompts[1], "streaming cut lag") {
		t.Error("skeleton prompt missing research findings")
	}
	if len(store.events) != 1 || store.events[0] != "skeleton_built" {
		t.Errorf("events = %v, want [skeleton_built]", store.events)
	}
}

func TestBuildSkeleton_IncludesBrief(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusResearching), results: someResults()}
	store.artifact.Metadata = map[string]any{"interview_brief": "the brief text"}
	client := &fakeClient{jsonResponse: validSkeleton}
	engine := NewEngine(store, client)

	if _, err := engine.BuildSkeleton(context.Background(), store.artifact.ID); err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	if !strings.Contains(client.prompts[len(client.prompts)-1], "the brief text") {
		t.Error("skeleton prompt missing interview brief")
	}
}

func TestBuildSkeleton_UsesDigestWhenValid(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusResearching), results: someResults()}
	digest := `{
		"themes": ["streaming beat batch on freshness"],
		"evidence": [{"claim": "lag dropped from a day to seconds", "source": "medium result"}]
	}`
	client := &fakeClient{jsonQueue: []string{digest, validSkeleton}}
	engine := NewEngine(store, client)

	if _, err := engine.BuildSkeleton(context.Background(), store.artifact.ID); err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	if !strings.Contains(client.prompts[0], "streaming cut lag") {
		t.Error("digest prompt missing raw findings")
	}
	if !strings.Contains(client.prompts[1], "streaming beat batch on freshness") {
		t.Error("skeleton prompt did not carry the digest")
	}
	if strings.Contains(client.prompts[1], "kafka connect configs") {
		t.Error("skeleton prompt kept raw findings alongside a valid digest")
	}
}

func TestBuildSkeleton_RejectsInvalidOutline(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusResearching), results: someResults()}
	client := &fakeClient{jsonResponse: `{"working_title": "x"}`}
	engine := NewEngine(store, client)

	if _, err := engine.BuildSkeleton(context.Background(), store.artifact.ID); err == nil {
		t.Fatal("schema-invalid skeleton accepted")
	}
	if store.savedSkeleton != "" {
		t.Error("invalid skeleton was persisted")
	}
	if store.artifact.Status != pipeline.StatusResearching {
		t.Error("status advanced despite invalid skeleton")
	}
}

func TestBuildSkeleton_RequiresResearch(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusResearching)}
	engine := NewEngine(store, &fakeClient{jsonResponse: validSkeleton})

	if _, err := engine.BuildSkeleton(context.Background(), store.artifact.ID); err == nil {
		t.Fatal("skeleton built with no research results")
	}
}

func TestBuildSkeleton_WrongStatus(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusDraft), results: someResults()}
	engine := NewEngine(store, &fakeClient{jsonResponse: validSkeleton})

	_, err := engine.BuildSkeleton(context.Background(), store.artifact.ID)
	var stateErr *pipeline.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("err = %v, want *pipeline.StateError", err)
	}
}

func TestWriteDraft(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusSkeletonReady)}
	skeleton := validSkeleton
	store.artifact.Skeleton = &skeleton
	client := &fakeClient{textResponse: "# The Boring Option Won\n\nThe draft body."}
	engine := NewEngine(store, client)

	artifact, err := engine.WriteDraft(context.Background(), store.artifact.ID)
	if err != nil {
		t.Fatalf("WriteDraft: %v", err)
	}
	if artifact.Status != pipeline.StatusWriting {
		t.Errorf("status = %s, want writing", artifact.Status)
	}
	if !strings.Contains(store.savedContent, "The draft body.") {
		t.Error("draft not persisted")
	}
}

func TestWriteDraft_NoSkeleton(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusSkeletonReady)}
	engine := NewEngine(store, &fakeClient{textResponse: "draft"})

	if _, err := engine.WriteDraft(context.Background(), store.artifact.ID); err == nil {
		t.Fatal("draft written without a skeleton")
	}
}

func TestHumanizeDraft(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusWriting)}
	store.artifact.Content = "a stiff draft"
	client := &fakeClient{textResponse: "a revised, looser draft"}
	engine := NewEngine(store, client)

	artifact, err := engine.HumanizeDraft(context.Background(), store.artifact.ID)
	if err != nil {
		t.Fatalf("HumanizeDraft: %v", err)
	}
	if artifact.Status != pipeline.StatusCreatingVisuals {
		t.Errorf("status = %s, want creating_visuals", artifact.Status)
	}
	if store.savedContent != "a revised, looser draft" {
		t.Error("revision not persisted")
	}
	if !strings.Contains(client.prompts[0], "a stiff draft") {
		t.Error("prompt missing original draft")
	}
}

func TestFinalize(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusCreatingVisuals)}
	engine := NewEngine(store, &fakeClient{})

	artifact, err := engine.Finalize(context.Background(), store.artifact.ID)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if artifact.Status != pipeline.StatusReady {
		t.Errorf("status = %s, want ready", artifact.Status)
	}
}

func TestNotFound(t *testing.T) {
	store := &fakeStore{}
	engine := NewEngine(store, &fakeClient{})

	_, err := engine.Finalize(context.Background(), uuid.New())
	var nferr *NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("err = %v, want *NotFoundError", err)
	}
}

func TestGenerationFailureDoesNotAdvance(t *testing.T) {
	store := &fakeStore{artifact: newArtifact(pipeline.StatusWriting)}
	store.artifact.Content = "a draft"
	engine := NewEngine(store, &fakeClient{err: errors.New("quota exceeded")})

	if _, err := engine.HumanizeDraft(context.Background(), store.artifact.ID); err == nil {
		t.Fatal("expected generation error")
	}
	if store.artifact.Status != pipeline.StatusWriting {
		t.Error("status advanced despite generation failure")
	}
}
