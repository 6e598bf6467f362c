package domain

import "encoding/json"

// MigrationInput is supplied once by the user when a run starts.
type MigrationInput struct {
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	OriginalPrompt string `json:"original_prompt"`
}

// TestCase is produced by the test generator agent.
type TestCase struct {
	TestID         string `json:"test_id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// TestResult is the target-model output for one TestCase. ActualOutput is
// whatever the executor agent returned, or {"error": "..."} on failure.
type TestResult struct {
	TestID       string          `json:"test_id"`
	Input        string          `json:"input"`
	ActualOutput json.RawMessage `json:"actual_output"`
}

// ErrorOutput builds the ActualOutput payload recorded for a failed test case.
func ErrorOutput(msg string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"error": msg}) // safe: string map always marshals
	return data
}

// RawPerformanceGap is the comparator's wire shape.
type RawPerformanceGap struct {
	Gap          string `json:"gap"`
	Example      string `json:"example"`
	Frequency    string `json:"frequency"`
	SuggestedFix string `json:"suggested_fix"`
}

// PerformanceGap is a normalized discrepancy between expected and actual output.
type PerformanceGap struct {
	Issue      string   `json:"issue"`
	Severity   Severity `json:"severity"`
	Suggestion string   `json:"suggestion"`
}

// Improvement is the terminal artifact of a run.
type Improvement struct {
	ImprovedPrompt string   `json:"improved_prompt"`
	ChangesApplied []string `json:"changes_applied"`
}

// Progress mirrors the step counter shown to the user.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// TotalSteps is the number of agent-backed steps in a run.
const TotalSteps = 5

// ComparisonTriple is one row sent to the comparator agent.
type ComparisonTriple struct {
	TestInput      string          `json:"test_input"`
	ExpectedOutput string          `json:"expected_output"`
	ActualOutput   json.RawMessage `json:"actual_output"`
}

// BuildComparison pairs each test case with the result at the same index.
// A missing result is sent as null.
func BuildComparison(cases []TestCase, results []TestResult) []ComparisonTriple {
	out := make([]ComparisonTriple, 0, len(cases))
	for i, tc := range cases {
		actual := json.RawMessage("null")
		if i < len(results) && len(results[i].ActualOutput) > 0 {
			actual = results[i].ActualOutput
		}
		out = append(out, ComparisonTriple{
			TestInput:      tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			ActualOutput:   actual,
		})
	}
	return out
}
