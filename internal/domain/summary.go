package domain

import "time"

// RunSummary is the set of per-run figures exported as metrics once a run
// reaches a terminal step.
type RunSummary struct {
	RunID            string  `json:"run_id"`
	Provider         string  `json:"provider"`
	Model            string  `json:"model"`
	Outcome          string  `json:"outcome"`
	DurationSeconds  float64 `json:"duration_seconds"`
	TestCases        int     `json:"test_cases"`
	TestsFailed      int     `json:"tests_failed"`
	Gaps             int     `json:"gaps"`
	HighSeverityGaps int     `json:"high_severity_gaps"`
	ChangesApplied   int     `json:"changes_applied"`
}

// Summarize derives a RunSummary from a finished state.
func Summarize(s PipelineState, outcome string, finishedAt time.Time) RunSummary {
	sum := RunSummary{
		RunID:          s.RunID,
		Provider:       s.Input.Provider,
		Model:          s.Input.Model,
		Outcome:        outcome,
		TestCases:      len(s.TestCases),
		TestsFailed:    s.CountStatus(TestFailed),
		Gaps:           len(s.PerformanceGaps),
		ChangesApplied: len(s.Improvements),
	}
	if started, err := time.Parse(time.RFC3339, s.StartedAt); err == nil {
		sum.DurationSeconds = finishedAt.Sub(started).Seconds()
	}
	for _, g := range s.PerformanceGaps {
		if g.Severity == SeverityHigh {
			sum.HighSeverityGaps++
		}
	}
	return sum
}
