package domain

import "strings"

// Step is a named state of the migration pipeline.
type Step string

const (
	StepInput      Step = "input"
	StepGenerating Step = "generating"
	StepMigrating  Step = "migrating"
	StepTesting    Step = "testing"
	StepAnalyzing  Step = "analyzing"
	StepOptimizing Step = "optimizing"
	StepComplete   Step = "complete"
	StepError      Step = "error"
)

// stepOrder is the only legal forward path. StepError is reachable from any
// non-terminal step and is handled separately.
var stepOrder = []Step{
	StepInput,
	StepGenerating,
	StepMigrating,
	StepTesting,
	StepAnalyzing,
	StepOptimizing,
	StepComplete,
}

func (s Step) Valid() bool {
	return s == StepError || s.index() >= 0
}

// Terminal reports whether no further transitions are allowed.
func (s Step) Terminal() bool {
	return s == StepComplete || s == StepError
}

func (s Step) index() int {
	for i, st := range stepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// TestStatus tracks one test case through step 3.
type TestStatus string

const (
	TestPending  TestStatus = "pending"
	TestRunning  TestStatus = "running"
	TestComplete TestStatus = "complete"
	TestFailed   TestStatus = "failed"
)

func (t TestStatus) Valid() bool {
	switch t {
	case TestPending, TestRunning, TestComplete, TestFailed:
		return true
	}
	return false
}

// Severity is the tier derived from a gap's reported frequency.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Provider is the vendor the original prompt was written for.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

func (p Provider) Valid() bool {
	switch Provider(strings.ToLower(string(p))) {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
		return true
	}
	return false
}
