// Package activities defines the Temporal activity I/O structs and the
// Activities implementation that bridges Temporal's serialization boundary
// to the agent adapters in internal/agent.
package activities

import (
	"encoding/json"

	"github.com/nova-migration/migrate-go/internal/domain"
)

// GenerateTestCasesInput is the activity input for test case generation.
type GenerateTestCasesInput struct {
	RequestedBy string                `json:"requested_by,omitempty"`
	Input       domain.MigrationInput `json:"input"`
}

// GenerateTestCasesOutput is the activity output from test case generation.
type GenerateTestCasesOutput struct {
	TestCases []domain.TestCase `json:"test_cases"`
}

// MigratePromptInput is the activity input for prompt migration.
type MigratePromptInput struct {
	Input domain.MigrationInput `json:"input"`
}

// MigratePromptOutput is the activity output from prompt migration.
// MigratedPrompt is empty when the migrator answered without a usable
// prompt; Warning then says why.
type MigratePromptOutput struct {
	MigratedPrompt string `json:"migrated_prompt"`
	Warning        string `json:"warning,omitempty"`
}

// ExecuteTestInput is the activity input for running one test case.
type ExecuteTestInput struct {
	MigratedPrompt string          `json:"migrated_prompt"`
	TestCase       domain.TestCase `json:"test_case"`
}

// ExecuteTestOutput is the activity output from running one test case.
type ExecuteTestOutput struct {
	ActualOutput json.RawMessage `json:"actual_output"`
}

// CompareOutputsInput is the activity input for output comparison.
type CompareOutputsInput struct {
	Triples []domain.ComparisonTriple `json:"triples"`
}

// CompareOutputsOutput is the activity output from output comparison.
type CompareOutputsOutput struct {
	Gaps []domain.PerformanceGap `json:"gaps"`
}

// ImprovePromptInput is the activity input for prompt improvement.
type ImprovePromptInput struct {
	CurrentPrompt string                  `json:"current_prompt"`
	Gaps          []domain.PerformanceGap `json:"gaps"`
}

// ImprovePromptOutput is the activity output from prompt improvement.
type ImprovePromptOutput struct {
	Improvement domain.Improvement `json:"improvement"`
}

// PublishRunMetricsInput is the activity input for run metric export.
type PublishRunMetricsInput struct {
	Summary domain.RunSummary `json:"summary"`
}
