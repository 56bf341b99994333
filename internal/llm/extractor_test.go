package llm

import (
	"strings"
	"testing"
)

func TestBuildExtractionPrompt(t *testing.T) {
	schema := ExtractionSchema{
		Description: "Pull the facts out.",
		Fields: []SchemaField{
			{Name: "summary", Type: "\"string\"", Description: "short summary", Required: true},
			{Name: "tags", Type: "[\"string\"]"},
		},
	}

	prompt := BuildExtractionPrompt(schema, "the input body")

	for _, want := range []string{
		"Pull the facts out.",
		`"summary": "string" (required) // short summary`,
		`"tags": ["string"]`,
		"Return ONLY the JSON object",
		"the input body",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestPredefinedSchemasCoverExpectedFields(t *testing.T) {
	coverage := CoverageAssessmentSchema()
	if len(coverage.Fields) != 5 {
		t.Errorf("coverage schema has %d fields, want 5", len(coverage.Fields))
	}
	for _, f := range coverage.Fields {
		if !f.Required {
			t.Errorf("coverage field %s not required", f.Name)
		}
	}

	brief := InterviewBriefSchema()
	names := map[string]bool{}
	for _, f := range brief.Fields {
		names[f.Name] = f.Required
	}
	for _, required := range []string{"summary", "key_facts", "angle"} {
		if !names[required] {
			t.Errorf("brief schema missing required field %s", required)
		}
	}
}
