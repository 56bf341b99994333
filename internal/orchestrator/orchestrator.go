// Package orchestrator is the conversational entry point: it owns sessions,
// classifies user intent, and dispatches pipeline tools.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/inkpipe/inkpipe/internal/db"
	"github.com/inkpipe/inkpipe/internal/interview"
	"github.com/inkpipe/inkpipe/internal/observability"
	"github.com/inkpipe/inkpipe/internal/pipeline"
	"github.com/inkpipe/inkpipe/internal/research"
	"github.com/inkpipe/inkpipe/internal/validation"
)

// apologyReply is the single reply surfaced for any uncaught internal error.
// Detail goes to logs and the trace span, never to the conversation.
const apologyReply = "Sorry, something went wrong on my end. Please try again in a moment."

const clarifyReply = "I'm not sure what you'd like to do. You can ask me to start an interview, run research, build an outline, or check progress on an artifact."

const helpReply = "I take an artifact from idea to publishable draft. Pick an artifact, then ask me to start an interview (case studies), run research, build the skeleton, or write the draft."

// InterviewEngine is the slice of the interview engine the orchestrator
// dispatches to.
type InterviewEngine interface {
	Start(ctx context.Context, artifactID uuid.UUID) (*interview.StartResult, error)
	Complete(ctx context.Context, artifactID uuid.UUID, input interview.CompleteInput) (*interview.CompleteResult, error)
}

// ResearchEngine runs the multi-source research stage.
type ResearchEngine interface {
	Run(ctx context.Context, artifactID uuid.UUID) (*research.RunResult, error)
}

// ArtifactReader is the read-side the orchestrator needs for status replies.
type ArtifactReader interface {
	GetArtifact(ctx context.Context, id uuid.UUID) (*db.Artifact, error)
}

// Request is one inbound user message plus lightweight screen context.
type Request struct {
	SessionKey string
	UserID     string
	Message    string
	ArtifactID uuid.UUID // uuid.Nil when no artifact is on screen
}

// Reply is what flows back to the caller.
type Reply struct {
	SessionID  uuid.UUID `json:"session_id"`
	Intent     Intent    `json:"intent"`
	Message    string    `json:"message"`
	ToolCalled string    `json:"tool_called,omitempty"`
	HistoryLen int       `json:"history_len"`
}

// Orchestrator wires sessions, governance, and the pipeline engines together.
type Orchestrator struct {
	sessions  *SessionManager
	interview InterviewEngine
	research  ResearchEngine
	store     ArtifactReader
	tracer    *observability.Tracer
	metrics   *observability.Collector
}

// New builds an orchestrator. Tracer and metrics may be nil; governance is
// best-effort and must never abort a turn.
func New(sessions *SessionManager, iv InterviewEngine, re ResearchEngine, store ArtifactReader, tracer *observability.Tracer, metrics *observability.Collector) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		interview: iv,
		research:  re,
		store:     store,
		tracer:    tracer,
		metrics:   metrics,
	}
}

// HandleMessage processes one user turn end to end. It never returns an
// error: anything uncaught becomes the generic apology reply.
func (o *Orchestrator) HandleMessage(ctx context.Context, req Request) Reply {
	start := time.Now()

	sess := o.sessions.Touch(req.SessionKey)

	var span *observability.Span
	if o.tracer != nil {
		span = o.tracer.StartSpan("", "orchestrator.handle_message", map[string]string{
			"session_id": sess.ID.String(),
		})
	}

	message, err := validation.CheckAndSanitize("message", req.Message)
	if err != nil {
		// Validation rejections are a normal reply, not an internal error.
		o.sessions.Append(req.SessionKey, Turn{Role: RoleUser, Content: "(rejected input)"})
		reply := o.finishTurn(req, sess, IntentClarify, err.Error(), "", span, start, false)
		return reply
	}
	o.sessions.Append(req.SessionKey, Turn{Role: RoleUser, Content: message})

	intent := ClassifyIntent(message, req.ArtifactID != uuid.Nil)

	text, toolCalled, dispatchErr := o.dispatch(ctx, intent, req)
	if dispatchErr != nil {
		log.Printf("[ORCHESTRATOR] session=%s intent=%s dispatch failed: %v", sess.ID, intent, dispatchErr)
		return o.finishTurn(req, sess, intent, apologyReply, toolCalled, span, start, true)
	}
	return o.finishTurn(req, sess, intent, text, toolCalled, span, start, false)
}

// finishTurn appends the assistant reply to history, closes governance
// bookkeeping, and builds the Reply.
func (o *Orchestrator) finishTurn(req Request, sess *Session, intent Intent, text, toolCalled string, span *observability.Span, start time.Time, failed bool) Reply {
	o.sessions.Append(req.SessionKey, Turn{Role: RoleAssistant, Content: text, ToolCall: toolCalled})

	if o.metrics != nil {
		o.metrics.RecordRequest("orchestrator.chat", time.Since(start), failed)
		if req.UserID != "" {
			o.metrics.RecordUser(req.UserID)
		}
	}
	if o.tracer != nil && span != nil {
		if failed {
			o.tracer.FailSpan(span.ID, fmt.Errorf("dispatch failed for intent %s", intent))
		} else {
			o.tracer.CompleteSpan(span.ID)
		}
	}

	return Reply{
		SessionID:  sess.ID,
		Intent:     intent,
		Message:    text,
		ToolCalled: toolCalled,
		HistoryLen: o.sessions.HistoryLen(req.SessionKey),
	}
}

// dispatch routes a classified intent to its handler. A returned error means
// the caller should apologize; fixed-guidance intents never error.
func (o *Orchestrator) dispatch(ctx context.Context, intent Intent, req Request) (text, toolCalled string, err error) {
	switch intent {
	case IntentClarify:
		return clarifyReply, "", nil
	case IntentHelp:
		return helpReply, "", nil
	case IntentStatus:
		return o.handleStatus(ctx, req.ArtifactID)
	case IntentStartInterview:
		return o.handleStartInterview(ctx, req.ArtifactID)
	case IntentRunResearch:
		return o.handleRunResearch(ctx, req.ArtifactID)
	case IntentCompleteInterview:
		// Completion needs the full turn list and brief; the conversational
		// surface points the caller at the structured endpoint instead.
		return "When you're ready, submit the full interview with its coverage scores and brief and I'll wrap it up.", "", nil
	case IntentBuildSkeleton, IntentWriteDraft:
		def := pipeline.ToolFor(string(intent))
		if def == nil {
			return clarifyReply, "", nil
		}
		if req.ArtifactID != uuid.Nil {
			artifact, err := o.store.GetArtifact(ctx, req.ArtifactID)
			if err != nil {
				return "", "", fmt.Errorf("loading artifact: %w", err)
			}
			if artifact != nil && def.Accepts(artifact.Status) {
				return fmt.Sprintf("This artifact is ready for %s. Kick it off from the pipeline view.", def.Name), "", nil
			}
		}
		return fmt.Sprintf("The %s stage runs from the pipeline view once the artifact reaches %s.", def.Name, def.Requires[0]), "", nil
	default:
		return clarifyReply, "", nil
	}
}

func (o *Orchestrator) handleStatus(ctx context.Context, artifactID uuid.UUID) (string, string, error) {
	artifact, err := o.store.GetArtifact(ctx, artifactID)
	if err != nil {
		return "", "", fmt.Errorf("loading artifact: %w", err)
	}
	if artifact == nil {
		return "I can't find that artifact. It may have been deleted.", "", nil
	}
	if pipeline.Terminal(artifact.Status) {
		return fmt.Sprintf("%q is %s. Nothing left to run.", artifact.Title, artifact.Status), "", nil
	}
	return fmt.Sprintf("%q is currently %s.", artifact.Title, artifact.Status), "", nil
}

func (o *Orchestrator) handleStartInterview(ctx context.Context, artifactID uuid.UUID) (string, string, error) {
	result, err := o.interview.Start(ctx, artifactID)
	if err != nil {
		if stateErr, ok := asStateError(err); ok {
			return fmt.Sprintf("I can't start an interview here: %s.", stateErr.Error()), "start_interview", nil
		}
		if isNotFound(err) {
			return "I can't find that artifact. It may have been deleted.", "start_interview", nil
		}
		return "", "start_interview", err
	}
	if o.metrics != nil {
		o.metrics.RecordPipelineRun()
	}
	if result.IsResume {
		return fmt.Sprintf("Picking the interview back up where we left off: %d turns so far, coverage at %d/100.",
			len(result.Turns), result.Coverage.Total()), "start_interview", nil
	}
	return "Interview started. Tell me about the background: what was the situation before this project?", "start_interview", nil
}

func (o *Orchestrator) handleRunResearch(ctx context.Context, artifactID uuid.UUID) (string, string, error) {
	result, err := o.research.Run(ctx, artifactID)
	if err != nil {
		if quorumErr, ok := asQuorumError(err); ok {
			return fmt.Sprintf("Research came up short: only %d distinct source types had relevant results (need %d). Try broadening the topic.",
				quorumErr.Found, quorumErr.MinRequired), "run_research", nil
		}
		if stateErr, ok := asStateError(err); ok {
			return fmt.Sprintf("I can't run research here: %s.", stateErr.Error()), "run_research", nil
		}
		if isNotFound(err) {
			return "I can't find that artifact. It may have been deleted.", "run_research", nil
		}
		return "", "run_research", err
	}
	if o.metrics != nil {
		o.metrics.RecordPipelineRun()
	}
	return fmt.Sprintf("Research done: %d results kept across %d source types (%s angle).",
		len(result.Results), len(result.QueriedTypes)-len(result.FailedTypes), result.Category), "run_research", nil
}
