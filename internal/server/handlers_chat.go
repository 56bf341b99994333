package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/inkpipe/inkpipe/internal/orchestrator"
)

// ChatRequest is the payload for POST /v1/chat.
type ChatRequest struct {
	Message    string `json:"message" validate:"required,max=4000"`
	ArtifactID string `json:"artifact_id,omitempty" validate:"omitempty,uuid"`
}

// handleChat is the conversational entry point. The orchestrator owns all
// error conversion, so this handler always answers 200 once auth passes.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	artifactID := uuid.Nil
	if req.ArtifactID != "" {
		artifactID, err = uuid.Parse(req.ArtifactID)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid artifact id")
			return
		}
	}

	reply := s.orchestrator.HandleMessage(r.Context(), orchestrator.Request{
		SessionKey: userID.String(),
		UserID:     userID.String(),
		Message:    req.Message,
		ArtifactID: artifactID,
	})
	s.jsonResponse(w, http.StatusOK, reply)
}

// handleChatStream is handleChat over NDJSON: an accepted event as soon as
// the message parses, then the reply as the terminal result line.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	artifactID := uuid.Nil
	if req.ArtifactID != "" {
		artifactID, err = uuid.Parse(req.ArtifactID)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid artifact id")
			return
		}
	}

	stream, err := NewStreamWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = stream.WriteEvent("accepted", map[string]string{"user_id": userID.String()})

	reply := s.orchestrator.HandleMessage(r.Context(), orchestrator.Request{
		SessionKey: userID.String(),
		UserID:     userID.String(),
		Message:    req.Message,
		ArtifactID: artifactID,
	})
	stream.WriteResult(reply)
}
