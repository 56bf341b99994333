package schemas

import (
	"errors"
	"testing"
)

func TestValidate_InterviewBrief(t *testing.T) {
	valid := `{
		"summary": "The team replaced a batch ETL job with streaming ingestion and cut reporting lag from a day to minutes.",
		"key_facts": ["reporting lag dropped from 26h to 4m", "zero data loss during cutover"],
		"quotes": ["we stopped apologizing to the analytics team"],
		"angle": "A migration story where the boring option won",
		"gaps": ["no cost comparison was captured"]
	}`
	if err := Validate(SchemaInterviewBrief, valid); err != nil {
		t.Fatalf("valid brief rejected: %v", err)
	}
}

func TestValidate_InterviewBriefMissingAngle(t *testing.T) {
	missing := `{
		"summary": "A long enough summary of the case study narrative arc for the schema.",
		"key_facts": ["one fact"]
	}`
	err := Validate(SchemaInterviewBrief, missing)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	found := false
	for _, fe := range validationErr.Errors {
		if fe.Field == "(root)" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing required property not reported at root: %+v", validationErr.Errors)
	}
}

func TestValidate_Skeleton(t *testing.T) {
	valid := `{
		"working_title": "The Boring Option Won",
		"thesis": "Streaming beat batch not on speed but on operability.",
		"sections": [
			{"heading": "Where we started", "purpose": "Establish the daily batch pain.", "evidence": ["26h lag"]},
			{"heading": "The decision", "purpose": "Why streaming over a faster batch."},
			{"heading": "The cutover", "purpose": "How the switch happened without loss."}
		]
	}`
	if err := Validate(SchemaSkeleton, valid); err != nil {
		t.Fatalf("valid skeleton rejected: %v", err)
	}
}

func TestValidate_SkeletonTooFewSections(t *testing.T) {
	short := `{
		"working_title": "Too Thin",
		"sections": [
			{"heading": "Only one", "purpose": "Not enough structure here."}
		]
	}`
	err := Validate(SchemaSkeleton, short)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestValidate_Coverage(t *testing.T) {
	if err := Validate(SchemaCoverage, `{"background":19,"challenge":19,"solution":20,"outcome":20,"reflection":18}`); err != nil {
		t.Fatalf("valid coverage rejected: %v", err)
	}
	if err := Validate(SchemaCoverage, `{"background":21,"challenge":0,"solution":0,"outcome":0,"reflection":0}`); err == nil {
		t.Fatal("out-of-range score accepted")
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("no_such_schema", `{}`)
	var loadErr *SchemaLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("err = %v, want *SchemaLoadError", err)
	}
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(`{"type":"object"}`, `{not json`)
	if err == nil {
		t.Fatal("malformed document accepted")
	}
}
