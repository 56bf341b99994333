package orchestrator

import "strings"

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	IntentStartInterview    Intent = "start_interview"
	IntentCompleteInterview Intent = "complete_interview"
	IntentRunResearch       Intent = "run_research"
	IntentBuildSkeleton     Intent = "build_skeleton"
	IntentWriteDraft        Intent = "write_draft"
	IntentStatus            Intent = "status"
	IntentHelp              Intent = "help"
	IntentClarify           Intent = "clarify"
)

// intentKeywords maps trigger phrases to intents, checked in order so that
// more specific phrases win over their substrings.
var intentKeywords = []struct {
	phrases []string
	intent  Intent
}{
	{[]string{"finish the interview", "complete the interview", "wrap up the interview", "done with the interview"}, IntentCompleteInterview},
	{[]string{"start the interview", "start an interview", "begin the interview", "interview me"}, IntentStartInterview},
	{[]string{"run research", "start research", "do the research", "research this", "research the topic", "gather sources"}, IntentRunResearch},
	{[]string{"build the skeleton", "build an outline", "outline", "skeleton"}, IntentBuildSkeleton},
	{[]string{"write the draft", "draft it", "start writing", "write it up"}, IntentWriteDraft},
	{[]string{"status", "where are we", "what's next", "whats next", "progress"}, IntentStatus},
	{[]string{"help", "what can you do", "how does this work"}, IntentHelp},
}

// ClassifyIntent maps free text to an intent. It is a pure function: no
// session state, no side effects, so the heuristic can be swapped out later.
// Messages matching nothing, or matching a pipeline intent without an
// artifact in context, classify as clarify.
func ClassifyIntent(message string, hasArtifact bool) Intent {
	lowered := strings.ToLower(strings.TrimSpace(message))
	if lowered == "" {
		return IntentClarify
	}
	for _, entry := range intentKeywords {
		for _, phrase := range entry.phrases {
			if strings.Contains(lowered, phrase) {
				if requiresArtifact(entry.intent) && !hasArtifact {
					return IntentClarify
				}
				return entry.intent
			}
		}
	}
	return IntentClarify
}

func requiresArtifact(intent Intent) bool {
	switch intent {
	case IntentStartInterview, IntentCompleteInterview, IntentRunResearch, IntentBuildSkeleton, IntentWriteDraft, IntentStatus:
		return true
	}
	return false
}
