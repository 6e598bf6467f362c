package domain

import (
	"fmt"
	"strings"
)

// ValidateMigrationInput checks required fields on a MigrationInput.
func ValidateMigrationInput(in MigrationInput) error {
	if strings.TrimSpace(in.Provider) == "" {
		return fmt.Errorf("provider is required")
	}
	if !Provider(in.Provider).Valid() {
		return fmt.Errorf("invalid provider: %q", in.Provider)
	}
	if strings.TrimSpace(in.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if strings.TrimSpace(in.OriginalPrompt) == "" {
		return fmt.Errorf("original_prompt is required")
	}
	return nil
}

// ValidateTestCase checks required fields on a TestCase.
func ValidateTestCase(tc TestCase) error {
	if tc.TestID == "" {
		return fmt.Errorf("test_id is required")
	}
	return nil
}

// ValidatePipelineState checks structural invariants of a PipelineState.
func ValidatePipelineState(s PipelineState) error {
	if !s.Step.Valid() {
		return fmt.Errorf("invalid step: %q", s.Step)
	}
	for i, tc := range s.TestCases {
		if err := ValidateTestCase(tc); err != nil {
			return fmt.Errorf("test_cases[%d]: %w", i, err)
		}
	}
	for id, st := range s.TestStatuses {
		if !st.Valid() {
			return fmt.Errorf("test %s: invalid status %q", id, st)
		}
	}
	if s.Step == StepError && s.Error == "" {
		return fmt.Errorf("error step requires an error message")
	}
	if s.Step == StepComplete && len(s.TestResults) != len(s.TestCases) {
		return fmt.Errorf("complete run has %d results for %d test cases", len(s.TestResults), len(s.TestCases))
	}
	return nil
}
