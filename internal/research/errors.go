package research

import (
	"fmt"

	"github.com/google/uuid"
)

// QuorumError reports that too few distinct source types survived filtering.
// Nothing is persisted when this is returned.
type QuorumError struct {
	MinRequired int
	Found       int
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("insufficient sources: found %d distinct source types, need %d", e.Found, e.MinRequired)
}

// NotFoundError reports that the target artifact does not exist.
type NotFoundError struct {
	ArtifactID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("artifact %s not found", e.ArtifactID)
}
