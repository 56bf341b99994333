package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/inkpipe/inkpipe/internal/interview"
	"github.com/inkpipe/inkpipe/internal/pipeline"
	"github.com/inkpipe/inkpipe/internal/research"
	"github.com/inkpipe/inkpipe/internal/validation"
	"github.com/inkpipe/inkpipe/internal/writer"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "title", Message: "required"}, http.StatusBadRequest},
		{"length cap", &validation.LengthError{Field: "topic", Length: 900, Max: 500}, http.StatusBadRequest},
		{"security", &validation.SecurityError{Field: "message"}, http.StatusBadRequest},
		{"empty field", &validation.EmptyError{Field: "answer"}, http.StatusBadRequest},
		{"score out of range", &interview.ScoreError{Dimension: "outcome", Score: 25}, http.StatusBadRequest},
		{"not owner", &ErrNotOwner{}, http.StatusForbidden},
		{"research not found", &research.NotFoundError{ArtifactID: uuid.New()}, http.StatusNotFound},
		{"interview not found", &interview.NotFoundError{ArtifactID: uuid.New()}, http.StatusNotFound},
		{"writer not found", &writer.NotFoundError{ArtifactID: uuid.New()}, http.StatusNotFound},
		{"illegal transition", &pipeline.StateError{Current: pipeline.StatusReady, Requested: pipeline.StatusInterviewing}, http.StatusConflict},
		{"quorum shortfall", &research.QuorumError{MinRequired: 5, Found: 3}, http.StatusUnprocessableEntity},
		{"store down", &ErrStoreUnavailable{Cause: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("running research: %w", &research.QuorumError{MinRequired: 5, Found: 2})
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(wrapped))
}
