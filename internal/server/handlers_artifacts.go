package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/inkpipe/inkpipe/internal/db"
	"github.com/inkpipe/inkpipe/internal/pipeline"
	"github.com/inkpipe/inkpipe/internal/validation"
)

// CreateArtifactRequest is the payload for POST /v1/artifacts.
type CreateArtifactRequest struct {
	Type  string `json:"type" validate:"required,oneof=long_form social case_study"`
	Title string `json:"title" validate:"required,max=200"`
	Topic string `json:"topic" validate:"required,max=500"`
}

// UpdateStatusRequest is the payload for PATCH /v1/artifacts/{id}.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// handleCreateArtifact creates a new artifact in draft status.
func (s *Server) handleCreateArtifact(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	// Adversarial-content screening on the free-text fields.
	title, err := validation.CheckAndSanitize("title", req.Title)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	topic, err := validation.CheckAndSanitize("topic", req.Topic)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	artifact, err := s.db.CreateArtifact(r.Context(), &db.ArtifactInput{
		OwnerID: userID,
		Type:    pipeline.ArtifactType(req.Type),
		Title:   title,
		Topic:   topic,
	})
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, artifact)
}

// handleListArtifacts lists the caller's artifacts.
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	artifacts, err := s.db.ListArtifactsByOwner(r.Context(), userID)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"artifacts": artifacts})
}

// handleGetArtifact returns one artifact owned by the caller.
func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, artifact)
}

// clientOwnedStatus reports whether a status may be requested over PATCH.
// Every mid-pipeline status is reached through its stage tool, never directly.
func clientOwnedStatus(s pipeline.Status) bool {
	return s == pipeline.StatusPublished || s == pipeline.StatusArchived
}

// handleUpdateStatus applies a caller-requested transition (publish, archive).
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "status", Message: err.Error()})
		return
	}

	requested := pipeline.Status(req.Status)
	if !clientOwnedStatus(requested) {
		s.errorFromErr(w, &pipeline.StateError{
			Current:   artifact.Status,
			Requested: requested,
			Expected:  []pipeline.Status{pipeline.StatusPublished, pipeline.StatusArchived},
		})
		return
	}

	next, err := pipeline.Transition(artifact.Status, requested, artifact.Type)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	if err := s.db.UpdateArtifactStatus(r.Context(), artifact.ID, next); err != nil {
		s.errorFromErr(w, err)
		return
	}
	_ = s.db.AppendArtifactEvent(r.Context(), artifact.ID, "status_changed", string(next))

	artifact.Status = next
	s.jsonResponse(w, http.StatusOK, artifact)
}

// handleDeleteArtifact removes an artifact and its dependent rows.
func (s *Server) handleDeleteArtifact(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteArtifact(r.Context(), artifact.ID); err != nil {
		s.errorFromErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListEvents returns the artifact's audit trail.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}
	events, err := s.db.GetArtifactEvents(r.Context(), artifact.ID)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"events": events})
}

// ownedArtifact loads the {id} path artifact and enforces ownership. On
// failure it writes the error response and returns ok=false.
func (s *Server) ownedArtifact(w http.ResponseWriter, r *http.Request) (*db.Artifact, bool) {
	userID, err := authedUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid artifact id")
		return nil, false
	}

	artifact, err := s.db.GetArtifact(r.Context(), id)
	if err != nil {
		s.errorFromErr(w, err)
		return nil, false
	}
	if artifact == nil {
		s.errorResponse(w, http.StatusNotFound, "artifact not found")
		return nil, false
	}
	if artifact.OwnerID != userID {
		s.errorFromErr(w, &ErrNotOwner{})
		return nil, false
	}
	return artifact, true
}
