package research

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/inkpipe/inkpipe/internal/db"
	"github.com/inkpipe/inkpipe/internal/pipeline"
	"github.com/inkpipe/inkpipe/internal/sources"
)

// Store is the persistence surface the engine needs. SaveResearchResults
// must replace the artifact's prior rows, not append to them, so a re-run
// leaves exactly one batch behind.
type Store interface {
	GetArtifact(ctx context.Context, id uuid.UUID) (*db.Artifact, error)
	UpdateArtifactStatus(ctx context.Context, id uuid.UUID, status pipeline.Status) error
	SaveResearchResults(ctx context.Context, results []db.ResearchResultInput) ([]db.ResearchResult, error)
	AppendArtifactEvent(ctx context.Context, artifactID uuid.UUID, event, detail string) error
}

// Options configures the research engine.
type Options struct {
	RelevanceThreshold float64       // strict >, results at the threshold are dropped
	MinDistinctSources int           // quorum over distinct source types
	MaxResults         int           // cap applied after filtering
	SourceFanout       int           // how many source types to query
	PerSourceLimit     int           // candidates requested per source type
	QueryTimeout       time.Duration // per-query deadline
	Verbose            bool
}

// DefaultOptions returns the standard engine settings.
func DefaultOptions() Options {
	return Options{
		RelevanceThreshold: 0.6,
		MinDistinctSources: 5,
		MaxResults:         20,
		SourceFanout:       5,
		PerSourceLimit:     4,
		QueryTimeout:       20 * time.Second,
	}
}

// Engine runs the multi-source research pipeline for one artifact at a time.
type Engine struct {
	store    Store
	provider sources.Provider
	opts     Options
}

// NewEngine creates a research engine.
func NewEngine(store Store, provider sources.Provider, opts Options) *Engine {
	if opts.RelevanceThreshold == 0 && opts.MaxResults == 0 {
		opts = DefaultOptions()
	}
	return &Engine{store: store, provider: provider, opts: opts}
}

// RunResult summarizes one successful research run.
type RunResult struct {
	ArtifactID   uuid.UUID           `json:"artifact_id"`
	Category     Category            `json:"category"`
	QueriedTypes []sources.SourceType `json:"queried_types"`
	FailedTypes  []sources.SourceType `json:"failed_types,omitempty"`
	Results      []db.ResearchResult `json:"results"`
}

// Run executes the research pipeline: classify, fan out, filter, rank,
// quorum-check, persist. The status nudge toward researching is best-effort;
// everything after the quorum check is all-or-nothing.
func (e *Engine) Run(ctx context.Context, artifactID uuid.UUID) (*RunResult, error) {
	return e.RunWithProgress(ctx, artifactID, nil)
}

// RunWithProgress is Run with progress events emitted at each phase, for
// callers streaming the run to a client.
func (e *Engine) RunWithProgress(ctx context.Context, artifactID uuid.UUID, onProgress pipeline.ProgressCallback) (*RunResult, error) {
	artifact, err := e.store.GetArtifact(ctx, artifactID)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, &NotFoundError{ArtifactID: artifactID}
	}

	// Eagerly nudge the artifact toward the research stage. Failure here is
	// logged and does not stop the run.
	e.nudgeStatus(ctx, artifact)

	category := Classify(artifact.Topic)
	order := PriorityOrder(category)
	fanout := e.opts.SourceFanout
	if fanout > len(order) {
		fanout = len(order)
	}
	queried := order[:fanout]

	if e.opts.Verbose {
		log.Printf("[RESEARCH] artifact=%s category=%s querying %v", artifactID, category, queried)
	}
	onProgress.Emit("classify", fmt.Sprintf("topic classified as %s", category),
		map[string]any{"category": category, "queried_types": queried})

	candidates, failed := e.fanOut(ctx, queried, artifact.Topic)
	onProgress.Emit("fan_out", fmt.Sprintf("%d candidates from %d source types", len(candidates), len(queried)-len(failed)),
		map[string]any{"failed_types": failed})

	// Filter on the strict relevance threshold, then rank and cap.
	kept := candidates[:0]
	for _, c := range candidates {
		if c.RelevanceScore > e.opts.RelevanceThreshold {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	if len(kept) > e.opts.MaxResults {
		kept = kept[:e.opts.MaxResults]
	}

	// Quorum over distinct source types, counted after filtering.
	distinct := make(map[sources.SourceType]struct{})
	for _, c := range kept {
		distinct[c.SourceType] = struct{}{}
	}
	if len(distinct) < e.opts.MinDistinctSources {
		return nil, &QuorumError{MinRequired: e.opts.MinDistinctSources, Found: len(distinct)}
	}
	onProgress.Emit("filter", fmt.Sprintf("%d results kept across %d source types", len(kept), len(distinct)), nil)

	inputs := make([]db.ResearchResultInput, len(kept))
	for i, c := range kept {
		inputs[i] = db.ResearchResultInput{
			ArtifactID:     artifactID,
			SourceType:     string(c.SourceType),
			SourceName:     c.SourceName,
			SourceURL:      c.SourceURL,
			Excerpt:        c.Excerpt,
			RelevanceScore: c.RelevanceScore,
		}
	}

	saved, err := e.store.SaveResearchResults(ctx, inputs)
	if err != nil {
		return nil, err
	}

	if err := e.store.AppendArtifactEvent(ctx, artifactID, "research_completed",
		string(category)); err != nil {
		log.Printf("[RESEARCH] artifact=%s event append failed: %v", artifactID, err)
	}

	return &RunResult{
		ArtifactID:   artifactID,
		Category:     category,
		QueriedTypes: queried,
		FailedTypes:  failed,
		Results:      saved,
	}, nil
}

// maxConcurrentQueries bounds in-flight provider calls per run
const maxConcurrentQueries = 4

// fanOut queries each source type in parallel and keeps only successful
// responses. Failed queries are dropped, never retried.
func (e *Engine) fanOut(ctx context.Context, types []sources.SourceType, topic string) ([]sources.Candidate, []sources.SourceType) {
	perType := make([][]sources.Candidate, len(types))
	errored := make([]bool, len(types))

	sem := semaphore.NewWeighted(maxConcurrentQueries)
	var g errgroup.Group
	for i, sourceType := range types {
		if err := sem.Acquire(ctx, 1); err != nil {
			errored[i] = true
			continue
		}
		g.Go(func() error {
			defer sem.Release(1)

			queryCtx := ctx
			if e.opts.QueryTimeout > 0 {
				var cancel context.CancelFunc
				queryCtx, cancel = context.WithTimeout(ctx, e.opts.QueryTimeout)
				defer cancel()
			}

			results, err := e.provider.Query(queryCtx, sourceType, topic, e.opts.PerSourceLimit)
			if err != nil {
				if e.opts.Verbose {
					log.Printf("[RESEARCH] source %s failed: %v", sourceType, err)
				}
				errored[i] = true
				return nil
			}
			perType[i] = results
			return nil
		})
	}
	_ = g.Wait()

	var all []sources.Candidate
	var failed []sources.SourceType
	for i, results := range perType {
		if errored[i] {
			failed = append(failed, types[i])
			continue
		}
		all = append(all, results...)
	}
	return all, failed
}

// nudgeStatus advances the artifact toward researching if the transition is
// legal. Best-effort only.
func (e *Engine) nudgeStatus(ctx context.Context, artifact *db.Artifact) {
	if artifact.Status == pipeline.StatusResearching {
		return
	}
	next, err := pipeline.Transition(artifact.Status, pipeline.StatusResearching, artifact.Type)
	if err != nil {
		log.Printf("[RESEARCH] artifact=%s status nudge skipped: %v", artifact.ID, err)
		return
	}
	if err := e.store.UpdateArtifactStatus(ctx, artifact.ID, next); err != nil {
		log.Printf("[RESEARCH] artifact=%s status nudge failed: %v", artifact.ID, err)
	}
}
