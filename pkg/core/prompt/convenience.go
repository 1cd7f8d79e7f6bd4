package prompt

// Convenience functions for common prompt operations

// GetGuidancePrompt returns a guidance prompt's system prompt by name
func GetGuidancePrompt(name string) (string, error) {
	id := "guidance." + name
	return Get().GetSystemPrompt(id)
}

// GetAssessmentPrompt returns an assessment prompt's system prompt by name
func GetAssessmentPrompt(name string) (string, error) {
	id := "assessment." + name
	return Get().GetSystemPrompt(id)
}

// PromptIDs contains all known prompt identifiers
var PromptIDs = struct {
	// Guidance (RAG question answering)
	GuidanceEligibilityAnswer string
	GuidanceDocumentAnswer    string

	// Assessment
	AssessmentEnhancedSummary string
}{
	GuidanceEligibilityAnswer: "guidance.eligibility_answer",
	GuidanceDocumentAnswer:    "guidance.document_answer",

	AssessmentEnhancedSummary: "assessment.enhanced_summary",
}
