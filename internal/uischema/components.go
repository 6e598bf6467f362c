package uischema

import (
	"github.com/nova-migration/migrate-go/internal/domain"
	"github.com/nova-migration/migrate-go/internal/promptdiff"
)

// progress is always present.
func progress(state domain.PipelineState) Component {
	return Component{
		Type:       ComponentProgress,
		Title:      "Migration Progress",
		Priority:   0,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"step":          string(state.Step),
			"is_processing": state.IsProcessing,
			"current":       state.Progress.Current,
			"total":         state.Progress.Total,
			"message":       state.Progress.Message,
			"started_at":    state.StartedAt,
		},
	}
}

func errorBanner(state domain.PipelineState) Component {
	return Component{
		Type:       ComponentErrorBanner,
		Title:      "Migration Failed",
		Priority:   1,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"message": state.Error,
		},
	}
}

func inputSummary(in domain.MigrationInput) Component {
	return Component{
		Type:       ComponentInputSummary,
		Title:      "Source Prompt",
		Priority:   5,
		Visibility: VisibilityCollapsed,
		Data: map[string]any{
			"provider":        in.Provider,
			"model":           in.Model,
			"original_prompt": in.OriginalPrompt,
		},
	}
}

// testCaseGrid shows one row per generated case with its live status.
func testCaseGrid(state domain.PipelineState) Component {
	rows := make([]map[string]any, len(state.TestCases))
	for i, tc := range state.TestCases {
		status := state.TestStatuses[tc.TestID]
		if status == "" {
			status = domain.TestPending
		}
		rows[i] = map[string]any{
			"test_id":         tc.TestID,
			"input":           tc.Input,
			"expected_output": tc.ExpectedOutput,
			"status":          string(status),
		}
	}
	return Component{
		Type:       ComponentTestCaseGrid,
		Title:      "Test Cases",
		Priority:   10,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"test_cases": rows,
			"counts": map[string]int{
				string(domain.TestPending):  state.CountStatus(domain.TestPending),
				string(domain.TestRunning):  state.CountStatus(domain.TestRunning),
				string(domain.TestComplete): state.CountStatus(domain.TestComplete),
				string(domain.TestFailed):   state.CountStatus(domain.TestFailed),
			},
		},
	}
}

// promptComparison shows the migrated prompt, and once optimization has
// finished, the improved prompt with a line diff against it.
func promptComparison(state domain.PipelineState) Component {
	data := map[string]any{
		"migrated_prompt": state.MigratedPrompt,
	}
	if state.FinalPrompt != "" {
		d := promptdiff.Compare(state.MigratedPrompt, state.FinalPrompt)
		data["final_prompt"] = state.FinalPrompt
		data["diff"] = d.Lines
		data["lines_added"] = d.Added
		data["lines_removed"] = d.Removed
	}
	return Component{
		Type:       ComponentPromptComparison,
		Title:      "Prompt Comparison",
		Priority:   20,
		Visibility: VisibilityVisible,
		Data:       data,
	}
}

func performanceGaps(gaps []domain.PerformanceGap) Component {
	counts := map[string]int{}
	for _, g := range gaps {
		counts[string(g.Severity)]++
	}
	return Component{
		Type:       ComponentPerformanceGaps,
		Title:      "Performance Gaps",
		Priority:   30,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"gaps":              gaps,
			"severity_counts":   counts,
			"high_severity_gap": counts[string(domain.SeverityHigh)] > 0,
		},
	}
}

func improvements(changes []string) Component {
	return Component{
		Type:       ComponentImprovements,
		Title:      "Improvements Applied",
		Priority:   40,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"changes_applied": changes,
		},
	}
}

// logConsole collapses once the run is over.
func logConsole(state domain.PipelineState) Component {
	vis := VisibilityVisible
	if state.Step.Terminal() {
		vis = VisibilityCollapsed
	}
	return Component{
		Type:       ComponentLogConsole,
		Title:      "Logs",
		Priority:   90,
		Visibility: vis,
		Data: map[string]any{
			"lines": state.Logs,
		},
	}
}
