// Package server provides the HTTP REST API for the content pipeline.
package server

import (
	"errors"
	"net/http"

	"github.com/inkpipe/inkpipe/internal/interview"
	"github.com/inkpipe/inkpipe/internal/pipeline"
	"github.com/inkpipe/inkpipe/internal/research"
	"github.com/inkpipe/inkpipe/internal/schemas"
	"github.com/inkpipe/inkpipe/internal/validation"
	"github.com/inkpipe/inkpipe/internal/writer"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Field + " - " + e.Message
}

// ErrNotOwner indicates the authenticated user does not own the artifact.
type ErrNotOwner struct{}

func (e *ErrNotOwner) Error() string {
	return "artifact belongs to a different user"
}

// ErrStoreUnavailable wraps a database connectivity failure.
type ErrStoreUnavailable struct {
	Cause error
}

func (e *ErrStoreUnavailable) Error() string {
	return "store unavailable: " + e.Cause.Error()
}

func (e *ErrStoreUnavailable) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr  *ErrValidation
		notOwner       *ErrNotOwner
		unavailable    *ErrStoreUnavailable
		stateErr       *pipeline.StateError
		quorumErr      *research.QuorumError
		scoreErr       *interview.ScoreError
		schemaErr      *schemas.ValidationError
		lengthErr      *validation.LengthError
		securityErr    *validation.SecurityError
		emptyErr       *validation.EmptyError
		researchNF     *research.NotFoundError
		interviewNF    *interview.NotFoundError
		writerNF       *writer.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &scoreErr),
		errors.As(err, &schemaErr),
		errors.As(err, &lengthErr),
		errors.As(err, &securityErr),
		errors.As(err, &emptyErr):
		return http.StatusBadRequest
	case errors.As(err, &notOwner):
		return http.StatusForbidden
	case errors.As(err, &researchNF), errors.As(err, &interviewNF), errors.As(err, &writerNF):
		return http.StatusNotFound
	case errors.As(err, &stateErr):
		return http.StatusConflict
	case errors.As(err, &quorumErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
