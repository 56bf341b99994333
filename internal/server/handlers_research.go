package server

import (
	"net/http"

	"github.com/inkpipe/inkpipe/internal/pipeline"
)

// handleRunResearch runs the research stage synchronously.
func (s *Server) handleRunResearch(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}

	result, err := s.research.Run(r.Context(), artifact.ID)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.metrics.RecordPipelineRun()
	s.jsonResponse(w, http.StatusOK, result)
}

// handleRunResearchStream runs the research stage with NDJSON progress lines
// and a terminal result line.
func (s *Server) handleRunResearchStream(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}

	stream, err := NewStreamWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	_ = stream.WriteEvent("started", map[string]string{
		"artifact_id": artifact.ID.String(),
		"topic":       artifact.Topic,
	})

	result, err := s.research.RunWithProgress(r.Context(), artifact.ID, func(event pipeline.ProgressEvent) {
		_ = stream.WriteEvent(event.Stage, map[string]any{
			"message": event.Message,
			"content": event.Content,
		})
	})
	if err != nil {
		stream.WriteError(err.Error())
		return
	}
	s.metrics.RecordPipelineRun()
	stream.WriteResult(result)
}

// handleGetResearch returns the persisted research results.
func (s *Server) handleGetResearch(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}

	results, err := s.db.GetResearchResults(r.Context(), artifact.ID)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"results": results})
}

// handleDeleteResearch discards the persisted results so the next run starts
// from a clean slate. Manual curation only; the pipeline never calls this.
func (s *Server) handleDeleteResearch(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteResearchResults(r.Context(), artifact.ID); err != nil {
		s.errorFromErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
