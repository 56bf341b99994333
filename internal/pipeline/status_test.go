package pipeline

import (
	"errors"
	"testing"
)

func TestTransition_HappyPath(t *testing.T) {
	// The full long-form path never touches interviewing.
	path := []Status{
		StatusResearching, StatusSkeletonReady, StatusWriting,
		StatusCreatingVisuals, StatusReady, StatusPublished, StatusArchived,
	}

	current := StatusDraft
	for _, next := range path {
		got, err := Transition(current, next, TypeLongForm)
		if err != nil {
			t.Fatalf("Transition(%s -> %s) failed: %v", current, next, err)
		}
		if got != next {
			t.Fatalf("Transition(%s -> %s) = %s", current, next, got)
		}
		current = got
	}
}

func TestTransition_CaseStudyInterviewsFirst(t *testing.T) {
	got, err := Transition(StatusDraft, StatusInterviewing, TypeCaseStudy)
	if err != nil {
		t.Fatalf("case study draft -> interviewing failed: %v", err)
	}
	if got != StatusInterviewing {
		t.Errorf("got %s, want interviewing", got)
	}

	got, err = Transition(StatusInterviewing, StatusResearching, TypeCaseStudy)
	if err != nil {
		t.Fatalf("interviewing -> researching failed: %v", err)
	}
	if got != StatusResearching {
		t.Errorf("got %s, want researching", got)
	}
}

func TestTransition_NonCaseStudyCannotInterview(t *testing.T) {
	for _, typ := range []ArtifactType{TypeLongForm, TypeSocial} {
		if _, err := Transition(StatusDraft, StatusInterviewing, typ); err == nil {
			t.Errorf("%s artifact entered interviewing, want rejection", typ)
		}
	}
}

func TestTransition_IllegalRejectedWithStateError(t *testing.T) {
	tests := []struct {
		current, requested Status
	}{
		{StatusReady, StatusInterviewing},
		{StatusDraft, StatusWriting},
		{StatusArchived, StatusDraft},
		{StatusPublished, StatusResearching},
		{StatusWriting, StatusResearching}, // no going backwards
	}

	for _, tt := range tests {
		_, err := Transition(tt.current, tt.requested, TypeCaseStudy)
		if err == nil {
			t.Errorf("Transition(%s -> %s) succeeded, want rejection", tt.current, tt.requested)
			continue
		}
		var stateErr *StateError
		if !errors.As(err, &stateErr) {
			t.Errorf("Transition(%s -> %s) error is %T, want *StateError", tt.current, tt.requested, err)
			continue
		}
		if stateErr.Current != tt.current || stateErr.Requested != tt.requested {
			t.Errorf("StateError carries %s -> %s, want %s -> %s",
				stateErr.Current, stateErr.Requested, tt.current, tt.requested)
		}
	}
}

func TestTransition_ResumableStagesAreIdempotent(t *testing.T) {
	for _, s := range []Status{StatusInterviewing, StatusResearching, StatusWriting, StatusCreatingVisuals} {
		got, err := Transition(s, s, TypeCaseStudy)
		if err != nil {
			t.Errorf("re-requesting %s errored: %v", s, err)
		}
		if got != s {
			t.Errorf("re-requesting %s = %s, want unchanged", s, got)
		}
	}

	// Terminal and gate statuses are not resumable.
	if _, err := Transition(StatusReady, StatusReady, TypeLongForm); err == nil {
		t.Error("re-requesting ready succeeded, want rejection")
	}
	if _, err := Transition(StatusDraft, StatusDraft, TypeLongForm); err == nil {
		t.Error("re-requesting draft succeeded, want rejection")
	}
}

func TestTransition_UnknownStatusRejected(t *testing.T) {
	if _, err := Transition(StatusDraft, Status("in_progress"), TypeLongForm); err == nil {
		t.Error("non-canonical status accepted, want rejection")
	}
}

func TestEntryStage(t *testing.T) {
	if EntryStage(TypeCaseStudy) != StatusInterviewing {
		t.Error("case study entry stage should be interviewing")
	}
	if EntryStage(TypeLongForm) != StatusResearching {
		t.Error("long form entry stage should be researching")
	}
}

func TestToolRegistry_Consistency(t *testing.T) {
	for name, def := range ToolRegistry {
		if def.Name != name {
			t.Errorf("tool %q has mismatched Name %q", name, def.Name)
		}
		if len(def.Requires) == 0 {
			t.Errorf("tool %q requires no statuses", name)
		}
		for _, s := range def.Requires {
			if !ValidStatus(s) {
				t.Errorf("tool %q requires unknown status %q", name, s)
			}
		}
		if def.Produces != "" && !ValidStatus(def.Produces) {
			t.Errorf("tool %q produces unknown status %q", name, def.Produces)
		}
	}
}

func TestToolFor(t *testing.T) {
	def := ToolFor("run_research")
	if def == nil {
		t.Fatal("run_research not registered")
	}
	if !def.Accepts(StatusInterviewing) {
		t.Error("run_research should accept interviewing (post-interview advance)")
	}
	if def.Accepts(StatusReady) {
		t.Error("run_research should not accept ready")
	}
	if ToolFor("nonexistent") != nil {
		t.Error("unknown tool lookup should return nil")
	}
}
