package domain

import "testing"

func TestStepValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		step  Step
		valid bool
	}{
		{name: "input", step: StepInput, valid: true},
		{name: "generating", step: StepGenerating, valid: true},
		{name: "migrating", step: StepMigrating, valid: true},
		{name: "testing", step: StepTesting, valid: true},
		{name: "analyzing", step: StepAnalyzing, valid: true},
		{name: "optimizing", step: StepOptimizing, valid: true},
		{name: "complete", step: StepComplete, valid: true},
		{name: "error", step: StepError, valid: true},
		{name: "bogus", step: Step("bogus"), valid: false},
		{name: "empty", step: Step(""), valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.step.Valid(); got != tt.valid {
				t.Errorf("Step(%q).Valid() = %v, want %v", tt.step, got, tt.valid)
			}
		})
	}
}

func TestStepTerminal(t *testing.T) {
	t.Parallel()
	for _, s := range []Step{StepInput, StepGenerating, StepMigrating, StepTesting, StepAnalyzing, StepOptimizing} {
		if s.Terminal() {
			t.Errorf("Step(%q).Terminal() = true, want false", s)
		}
	}
	for _, s := range []Step{StepComplete, StepError} {
		if !s.Terminal() {
			t.Errorf("Step(%q).Terminal() = false, want true", s)
		}
	}
}

func TestTestStatusValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status TestStatus
		valid  bool
	}{
		{TestPending, true},
		{TestRunning, true},
		{TestComplete, true},
		{TestFailed, true},
		{TestStatus("skipped"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := tt.status.Valid(); got != tt.valid {
				t.Errorf("TestStatus(%q).Valid() = %v, want %v", tt.status, got, tt.valid)
			}
		})
	}
}

func TestProviderValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		provider Provider
		valid    bool
	}{
		{ProviderOpenAI, true},
		{ProviderAnthropic, true},
		{ProviderGoogle, true},
		{Provider("OpenAI"), true},
		{Provider("mistral"), false},
		{Provider(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			t.Parallel()
			if got := tt.provider.Valid(); got != tt.valid {
				t.Errorf("Provider(%q).Valid() = %v, want %v", tt.provider, got, tt.valid)
			}
		})
	}
}
