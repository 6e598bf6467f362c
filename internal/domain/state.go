package domain

import (
	"fmt"
	"time"
)

// logTimeLayout matches the short wall-clock prefix shown in the log console.
const logTimeLayout = "15:04:05"

// PipelineState is the single mutable aggregate of a migration run. The
// orchestrator is its only writer; every other reader gets a copy.
type PipelineState struct {
	RunID     string `json:"run_id"`
	StartedAt string `json:"started_at"`

	Input        MigrationInput `json:"input"`
	Step         Step           `json:"step"`
	Steps        []Step         `json:"steps"`
	IsProcessing bool           `json:"is_processing"`
	Progress     Progress       `json:"progress"`

	TestCases       []TestCase            `json:"test_cases"`
	MigratedPrompt  string                `json:"migrated_prompt"`
	TestResults     []TestResult          `json:"test_results"`
	PerformanceGaps []PerformanceGap      `json:"performance_gaps"`
	FinalPrompt     string                `json:"final_prompt"`
	Improvements    []string              `json:"improvements"`
	TestStatuses    map[string]TestStatus `json:"test_statuses"`

	Logs  []string `json:"logs"`
	Error string   `json:"error,omitempty"`
}

// NewPipelineState returns the initial state for a run. Callers inside a
// workflow pass workflow time and the execution's run id.
func NewPipelineState(runID string, startedAt time.Time, input MigrationInput) PipelineState {
	return PipelineState{
		RunID:        runID,
		StartedAt:    startedAt.UTC().Format(time.RFC3339),
		Input:        input,
		Step:         StepInput,
		Steps:        []Step{},
		Progress:     Progress{Current: 0, Total: TotalSteps},
		TestCases:    []TestCase{},
		TestResults:  []TestResult{},
		TestStatuses: map[string]TestStatus{},
		Logs:         []string{},
	}
}

// Enter moves the pipeline to the next step. Only the immediate successor
// of the current step is accepted.
func (s *PipelineState) Enter(step Step, message string) error {
	if s.Step.Terminal() {
		return fmt.Errorf("pipeline: cannot enter %q from terminal step %q", step, s.Step)
	}
	cur := s.Step.index()
	next := step.index()
	if next < 0 || next != cur+1 {
		return fmt.Errorf("pipeline: illegal transition %q -> %q", s.Step, step)
	}
	s.Step = step
	s.Steps = append(s.Steps, step)
	if step != StepComplete {
		s.IsProcessing = true
		s.Progress = Progress{Current: next, Total: TotalSteps, Message: message}
	}
	return nil
}

// SetProgress updates the progress message without changing step.
func (s *PipelineState) SetProgress(message string) {
	s.Progress.Message = message
}

// Log appends a timestamped line.
func (s *PipelineState) Log(now time.Time, message string) {
	s.Logs = append(s.Logs, fmt.Sprintf("[%s] %s", now.Format(logTimeLayout), message))
}

// SetTestCases stores generated test cases and marks each pending.
func (s *PipelineState) SetTestCases(cases []TestCase) {
	s.TestCases = cases
	s.TestStatuses = make(map[string]TestStatus, len(cases))
	for _, tc := range cases {
		s.TestStatuses[tc.TestID] = TestPending
	}
}

// SetTestStatus records the status of one test case.
func (s *PipelineState) SetTestStatus(testID string, status TestStatus) {
	if s.TestStatuses == nil {
		s.TestStatuses = map[string]TestStatus{}
	}
	s.TestStatuses[testID] = status
}

// Complete finalizes a successful run.
func (s *PipelineState) Complete(now time.Time, imp Improvement) error {
	if err := s.Enter(StepComplete, ""); err != nil {
		return err
	}
	s.FinalPrompt = imp.ImprovedPrompt
	s.Improvements = imp.ChangesApplied
	s.IsProcessing = false
	s.Progress = Progress{Current: TotalSteps, Total: TotalSteps, Message: "Migration completed successfully!"}
	s.Log(now, "Migration completed successfully!")
	return nil
}

// Fail moves the pipeline to the terminal error step from any non-terminal step.
func (s *PipelineState) Fail(now time.Time, message string) {
	if s.Step.Terminal() {
		return
	}
	s.Log(now, "Migration failed: "+message)
	s.Step = StepError
	s.Steps = append(s.Steps, StepError)
	s.IsProcessing = false
	s.Error = message
}

// CountStatus returns how many test cases are in the given status.
func (s *PipelineState) CountStatus(status TestStatus) int {
	n := 0
	for _, st := range s.TestStatuses {
		if st == status {
			n++
		}
	}
	return n
}
