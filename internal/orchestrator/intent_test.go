package orchestrator

import "testing"

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		message     string
		hasArtifact bool
		want        Intent
	}{
		{"Can you start the interview now?", true, IntentStartInterview},
		{"interview me about this project", true, IntentStartInterview},
		{"I'm done with the interview", true, IntentCompleteInterview},
		{"please run research on this topic", true, IntentRunResearch},
		{"gather sources for me", true, IntentRunResearch},
		{"build an outline", true, IntentBuildSkeleton},
		{"write it up", true, IntentWriteDraft},
		{"what's next?", true, IntentStatus},
		{"status please", true, IntentStatus},
		{"help", false, IntentHelp},
		{"what can you do", false, IntentHelp},
		{"the weather is nice today", true, IntentClarify},
		{"", true, IntentClarify},
		{"   ", true, IntentClarify},
	}
	for _, tt := range tests {
		if got := ClassifyIntent(tt.message, tt.hasArtifact); got != tt.want {
			t.Errorf("ClassifyIntent(%q, %v) = %s, want %s", tt.message, tt.hasArtifact, got, tt.want)
		}
	}
}

func TestClassifyIntent_PipelineIntentsNeedArtifact(t *testing.T) {
	for _, message := range []string{
		"start the interview",
		"run research",
		"status",
	} {
		if got := ClassifyIntent(message, false); got != IntentClarify {
			t.Errorf("ClassifyIntent(%q, no artifact) = %s, want clarify", message, got)
		}
	}
}

func TestClassifyIntent_SpecificPhraseWins(t *testing.T) {
	// "complete the interview" contains "interview" but must not classify as
	// a fresh start.
	if got := ClassifyIntent("let's complete the interview", true); got != IntentCompleteInterview {
		t.Errorf("got %s, want complete_interview", got)
	}
}
