package orchestrator

import (
	"errors"

	"github.com/inkpipe/inkpipe/internal/interview"
	"github.com/inkpipe/inkpipe/internal/pipeline"
	"github.com/inkpipe/inkpipe/internal/research"
)

func asStateError(err error) (*pipeline.StateError, bool) {
	var stateErr *pipeline.StateError
	if errors.As(err, &stateErr) {
		return stateErr, true
	}
	return nil, false
}

func asQuorumError(err error) (*research.QuorumError, bool) {
	var quorumErr *research.QuorumError
	if errors.As(err, &quorumErr) {
		return quorumErr, true
	}
	return nil, false
}

func isNotFound(err error) bool {
	var researchNF *research.NotFoundError
	var interviewNF *interview.NotFoundError
	return errors.As(err, &researchNF) || errors.As(err, &interviewNF)
}
