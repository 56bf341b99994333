// Package pipeline defines the artifact status vocabulary and the legal
// transitions between stages. Every tool that mutates an artifact's status
// consults this package first; illegal transitions are rejected, never coerced.
package pipeline

import (
	"fmt"
)

// Status is a pipeline stage an artifact can occupy.
type Status string

// Canonical status vocabulary. The research stage is always "researching";
// earlier iterations of the system used in_progress and research
// interchangeably for the same stage, which this set deliberately collapses.
const (
	StatusDraft           Status = "draft"
	StatusInterviewing    Status = "interviewing"
	StatusResearching     Status = "researching"
	StatusSkeletonReady   Status = "skeleton_ready"
	StatusWriting         Status = "writing"
	StatusCreatingVisuals Status = "creating_visuals"
	StatusReady           Status = "ready"
	StatusPublished       Status = "published"
	StatusArchived        Status = "archived"
)

// ArtifactType is the closed set of content kinds the pipeline produces.
type ArtifactType string

// Artifact type constants
const (
	TypeLongForm  ArtifactType = "long_form"
	TypeSocial    ArtifactType = "social"
	TypeCaseStudy ArtifactType = "case_study"
)

// ValidStatus reports whether s is part of the canonical vocabulary.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusInterviewing, StatusResearching, StatusSkeletonReady,
		StatusWriting, StatusCreatingVisuals, StatusReady, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// ValidArtifactType reports whether t is a known artifact type.
func ValidArtifactType(t ArtifactType) bool {
	switch t {
	case TypeLongForm, TypeSocial, TypeCaseStudy:
		return true
	}
	return false
}

// transitions maps each status to the set of statuses reachable from it.
// The interviewing stage only exists for case-study artifacts; Transition
// enforces that separately.
var transitions = map[Status][]Status{
	StatusDraft:           {StatusInterviewing, StatusResearching},
	StatusInterviewing:    {StatusResearching},
	StatusResearching:     {StatusSkeletonReady},
	StatusSkeletonReady:   {StatusWriting},
	StatusWriting:         {StatusCreatingVisuals},
	StatusCreatingVisuals: {StatusReady},
	StatusReady:           {StatusPublished, StatusArchived},
	StatusPublished:       {StatusArchived},
	StatusArchived:        {},
}

// resumable statuses may be re-requested while already occupied: a tool
// retrying its own transition gets the current state back instead of an error,
// so interrupted stages can pick up where they left off.
var resumable = map[Status]bool{
	StatusInterviewing:    true,
	StatusResearching:     true,
	StatusWriting:         true,
	StatusCreatingVisuals: true,
}

// StateError is the typed rejection for an illegal status transition.
type StateError struct {
	Current   Status
	Requested Status
	Expected  []Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("illegal transition: artifact is %q, requested %q (legal: %v)",
		e.Current, e.Requested, e.Expected)
}

// Transition validates a requested status change and returns the status the
// artifact should hold afterwards.
//
// Re-requesting the current status of a resumable stage is not an error: the
// current status is returned unchanged so callers can resume in-flight work.
// Only case-study artifacts may enter the interviewing stage.
func Transition(current, requested Status, artifactType ArtifactType) (Status, error) {
	if !ValidStatus(requested) {
		return "", &StateError{Current: current, Requested: requested, Expected: transitions[current]}
	}

	if current == requested && resumable[current] {
		return current, nil
	}

	if requested == StatusInterviewing && artifactType != TypeCaseStudy {
		return "", &StateError{Current: current, Requested: requested, Expected: []Status{StatusResearching}}
	}

	for _, next := range transitions[current] {
		if next == requested {
			return requested, nil
		}
	}

	return "", &StateError{Current: current, Requested: requested, Expected: transitions[current]}
}

// EntryStage returns the first pipeline stage after draft for the given
// artifact type. Case studies are interviewed before research.
func EntryStage(t ArtifactType) Status {
	if t == TypeCaseStudy {
		return StatusInterviewing
	}
	return StatusResearching
}

// Terminal reports whether no further transitions exist from s.
func Terminal(s Status) bool {
	return len(transitions[s]) == 0
}
