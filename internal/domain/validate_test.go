package domain

import "testing"

func TestValidateMigrationInput(t *testing.T) {
	t.Parallel()
	valid := MigrationInput{Provider: "openai", Model: "gpt-4o", OriginalPrompt: "You are a helpful assistant."}
	tests := []struct {
		name    string
		modify  func(MigrationInput) MigrationInput
		wantErr bool
	}{
		{name: "valid", modify: func(in MigrationInput) MigrationInput { return in }, wantErr: false},
		{name: "missing provider", modify: func(in MigrationInput) MigrationInput { in.Provider = ""; return in }, wantErr: true},
		{name: "unknown provider", modify: func(in MigrationInput) MigrationInput { in.Provider = "acme"; return in }, wantErr: true},
		{name: "missing model", modify: func(in MigrationInput) MigrationInput { in.Model = " "; return in }, wantErr: true},
		{name: "missing prompt", modify: func(in MigrationInput) MigrationInput { in.OriginalPrompt = ""; return in }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateMigrationInput(tt.modify(valid))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMigrationInput() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTestCase(t *testing.T) {
	t.Parallel()
	if err := ValidateTestCase(TestCase{TestID: "TC001"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTestCase(TestCase{}); err == nil {
		t.Error("expected error for missing test_id")
	}
}

func TestValidatePipelineState(t *testing.T) {
	t.Parallel()
	s := NewPipelineState("run-1", fixedNow, MigrationInput{})
	if err := ValidatePipelineState(s); err != nil {
		t.Errorf("fresh state should be valid: %v", err)
	}

	bad := s
	bad.Step = StepError
	if err := ValidatePipelineState(bad); err == nil {
		t.Error("expected error for error step without message")
	}

	bad = NewPipelineState("run-1", fixedNow, MigrationInput{})
	bad.TestStatuses["TC001"] = TestStatus("weird")
	if err := ValidatePipelineState(bad); err == nil {
		t.Error("expected error for invalid test status")
	}

	bad = NewPipelineState("run-1", fixedNow, MigrationInput{})
	bad.SetTestCases([]TestCase{{TestID: "TC001"}, {Input: "no id"}})
	if err := ValidatePipelineState(bad); err == nil {
		t.Error("expected error for test case without id")
	}
}
