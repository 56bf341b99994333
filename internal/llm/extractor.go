// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "InterviewBrief", "CoverageAssessment")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// CoverageAssessmentSchema returns the extraction schema for scoring an
// interview answer against the narrative dimensions.
func CoverageAssessmentSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "CoverageAssessment",
		Description: `You are an expert story editor evaluating a case-study interview answer.
Score how much NEW information the answer contributes to each narrative dimension.
Scores are integers from 0 to 20. Score only what the answer actually says.`,
		Fields: []SchemaField{
			{
				Name:        "background",
				Type:        "number",
				Description: "Context, setting, who was involved, what was at stake (0-20)",
				Required:    true,
			},
			{
				Name:        "challenge",
				Type:        "number",
				Description: "The concrete problem or obstacle faced (0-20)",
				Required:    true,
			},
			{
				Name:        "solution",
				Type:        "number",
				Description: "What was actually done, decisions made, approach taken (0-20)",
				Required:    true,
			},
			{
				Name:        "outcome",
				Type:        "number",
				Description: "Measurable results, what changed afterward (0-20)",
				Required:    true,
			},
			{
				Name:        "reflection",
				Type:        "number",
				Description: "Lessons learned, what would be done differently (0-20)",
				Required:    true,
			},
		},
	}
}

// InterviewBriefSchema returns the extraction schema that condenses a full
// interview transcript into a structured brief for downstream drafting.
func InterviewBriefSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "InterviewBrief",
		Description: `You are an expert content strategist. Condense the interview transcript below
into a structured brief a writer can draft from. COPY FACTS FAITHFULLY - do not invent
numbers, names, or outcomes that are not in the transcript.`,
		Fields: []SchemaField{
			{
				Name:        "summary",
				Type:        "\"string\"",
				Description: "Two or three sentence narrative summary of the story",
				Required:    true,
			},
			{
				Name:        "key_facts",
				Type:        "[\"string\"]",
				Description: "Concrete facts, metrics, and dates stated by the interviewee, verbatim where possible",
				Required:    true,
			},
			{
				Name:        "quotes",
				Type:        "[\"string\"]",
				Description: "Direct quotes worth carrying into the draft",
				Required:    false,
			},
			{
				Name:        "angle",
				Type:        "\"string\"",
				Description: "The most compelling framing for the piece",
				Required:    true,
			},
			{
				Name:        "gaps",
				Type:        "[\"string\"]",
				Description: "Information still missing that the writer should hedge around",
				Required:    false,
			},
		},
	}
}

// ResearchDigestSchema returns the extraction schema that condenses raw
// research findings into themes usable during skeleton construction.
func ResearchDigestSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ResearchDigest",
		Description: `You are an expert researcher. Distill the collected findings below into the
themes and supporting evidence most useful for an article on the stated topic.`,
		Fields: []SchemaField{
			{
				Name:        "themes",
				Type:        "[\"string\"]",
				Description: "Recurring themes across the findings",
				Required:    true,
			},
			{
				Name:        "evidence",
				Type:        "[{\"claim\": \"string\", \"source\": \"string\"}]",
				Description: "Specific data points or claims, each naming where it came from",
				Required:    true,
			},
			{
				Name:        "contrarian_points",
				Type:        "[\"string\"]",
				Description: "Findings that cut against the main themes",
				Required:    false,
			},
		},
	}
}
