package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/inkpipe/inkpipe/internal/db"
)

// handleBuildSkeleton generates the outline from research and the interview
// brief, advancing the artifact to skeleton_ready.
func (s *Server) handleBuildSkeleton(w http.ResponseWriter, r *http.Request) {
	s.runWriterStage(w, r, s.writer.BuildSkeleton)
}

// handleWriteDraft generates the draft from the skeleton.
func (s *Server) handleWriteDraft(w http.ResponseWriter, r *http.Request) {
	s.runWriterStage(w, r, s.writer.WriteDraft)
}

// handleHumanizeDraft applies the revision pass to the draft.
func (s *Server) handleHumanizeDraft(w http.ResponseWriter, r *http.Request) {
	s.runWriterStage(w, r, s.writer.HumanizeDraft)
}

// handleFinalize marks the artifact ready for publishing.
func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	s.runWriterStage(w, r, s.writer.Finalize)
}

// runWriterStage is the shared plumbing for the generation-stage endpoints.
func (s *Server) runWriterStage(w http.ResponseWriter, r *http.Request, stage func(context.Context, uuid.UUID) (*db.Artifact, error)) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}

	updated, err := stage(r.Context(), artifact.ID)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.metrics.RecordPipelineRun()
	s.jsonResponse(w, http.StatusOK, updated)
}
