package pipeline

// ToolDefinition describes one pipeline tool: the stage it drives, the status
// an artifact must hold before the tool runs, and the status it leaves behind.
// The orchestrator consults this table when dispatching, so stage ordering
// lives in one place.
type ToolDefinition struct {
	Name      string
	Stage     Status
	Requires  []Status // statuses the tool accepts as a starting point
	Produces  Status   // status after a successful run ("" = unchanged)
	CaseStudy bool     // tool only applies to case-study artifacts
}

// ToolRegistry holds every pipeline tool definition keyed by name.
var ToolRegistry = map[string]ToolDefinition{
	"start_interview": {
		Name:      "start_interview",
		Stage:     StatusInterviewing,
		Requires:  []Status{StatusDraft, StatusInterviewing},
		Produces:  StatusInterviewing,
		CaseStudy: true,
	},
	"complete_interview": {
		Name:      "complete_interview",
		Stage:     StatusInterviewing,
		Requires:  []Status{StatusInterviewing},
		Produces:  StatusInterviewing, // research advances the status, not completion
		CaseStudy: true,
	},
	"run_research": {
		Name:     "run_research",
		Stage:    StatusResearching,
		Requires: []Status{StatusDraft, StatusInterviewing, StatusResearching},
		Produces: StatusResearching,
	},
	"build_skeleton": {
		Name:     "build_skeleton",
		Stage:    StatusSkeletonReady,
		Requires: []Status{StatusResearching},
		Produces: StatusSkeletonReady,
	},
	"write_draft": {
		Name:     "write_draft",
		Stage:    StatusWriting,
		Requires: []Status{StatusSkeletonReady, StatusWriting},
		Produces: StatusWriting,
	},
	"humanize_draft": {
		Name:     "humanize_draft",
		Stage:    StatusCreatingVisuals,
		Requires: []Status{StatusWriting},
		Produces: StatusCreatingVisuals,
	},
	"finalize": {
		Name:     "finalize",
		Stage:    StatusReady,
		Requires: []Status{StatusCreatingVisuals},
		Produces: StatusReady,
	},
}

// ToolFor returns the definition for a named tool, or nil if unknown.
func ToolFor(name string) *ToolDefinition {
	if def, ok := ToolRegistry[name]; ok {
		return &def
	}
	return nil
}

// Accepts reports whether the tool can start from the given status.
func (d *ToolDefinition) Accepts(s Status) bool {
	for _, r := range d.Requires {
		if r == s {
			return true
		}
	}
	return false
}
