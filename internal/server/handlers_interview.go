package server

import (
	"encoding/json"
	"net/http"

	"github.com/inkpipe/inkpipe/internal/interview"
	"github.com/inkpipe/inkpipe/internal/validation"
)

// TurnRequest is the payload for POST /v1/artifacts/{id}/interview/turns.
type TurnRequest struct {
	QuestionNumber int            `json:"question_number" validate:"required,min=1"`
	Dimension      string         `json:"dimension" validate:"required,oneof=background challenge solution outcome reflection"`
	Question       string         `json:"question" validate:"required"`
	Answer         string         `json:"answer" validate:"required"`
	Coverage       map[string]int `json:"coverage"` // empty means score it server-side
}

// CompleteRequest is the payload for POST /v1/artifacts/{id}/interview/complete.
// An empty brief asks the server to synthesize one from the turns.
type CompleteRequest struct {
	Turns    []TurnRequest  `json:"turns" validate:"required,min=1,dive"`
	Coverage map[string]int `json:"coverage" validate:"required"`
	Brief    string         `json:"brief"`
}

// handleStartInterview starts or resumes the adaptive interview.
func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}

	result, err := s.interview.Start(r.Context(), artifact.ID)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.metrics.RecordPipelineRun()
	s.jsonResponse(w, http.StatusOK, result)
}

// handleRecordTurn persists one interview turn.
func (s *Server) handleRecordTurn(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	input, err := turnInputFromRequest(req)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	result, err := s.interview.RecordTurn(r.Context(), artifact.ID, input)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleCompleteInterview accepts the full turn list plus brief and closes
// out the interview stage.
func (s *Server) handleCompleteInterview(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}

	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorFromErr(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	brief := ""
	if req.Brief != "" {
		sanitized, err := validation.CheckAndSanitize("brief", req.Brief)
		if err != nil {
			s.errorFromErr(w, err)
			return
		}
		brief = sanitized
	}

	turns := make([]interview.TurnInput, 0, len(req.Turns))
	for _, t := range req.Turns {
		input, err := turnInputFromRequest(t)
		if err != nil {
			s.errorFromErr(w, err)
			return
		}
		turns = append(turns, input)
	}

	result, err := s.interview.Complete(r.Context(), artifact.ID, interview.CompleteInput{
		Turns:    turns,
		Coverage: coverageFromRequest(req.Coverage),
		Brief:    brief,
	})
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleListTurns returns the saved interview turns.
func (s *Server) handleListTurns(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.ownedArtifact(w, r)
	if !ok {
		return
	}

	turns, err := s.db.GetInterviewTurns(r.Context(), artifact.ID)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"turns": turns})
}

// turnInputFromRequest screens the free-text fields and converts the DTO.
func turnInputFromRequest(req TurnRequest) (interview.TurnInput, error) {
	answer, err := validation.CheckAndSanitize("answer", req.Answer)
	if err != nil {
		return interview.TurnInput{}, err
	}
	return interview.TurnInput{
		QuestionNumber: req.QuestionNumber,
		Dimension:      req.Dimension,
		Question:       req.Question,
		Answer:         answer,
		Coverage:       coverageFromRequest(req.Coverage),
	}, nil
}

func coverageFromRequest(m map[string]int) interview.CoverageScore {
	return interview.CoverageScore{
		Background: m[interview.DimBackground],
		Challenge:  m[interview.DimChallenge],
		Solution:   m[interview.DimSolution],
		Outcome:    m[interview.DimOutcome],
		Reflection: m[interview.DimReflection],
	}
}
