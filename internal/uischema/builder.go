package uischema

import "github.com/nova-migration/migrate-go/internal/domain"

const schemaVersion = "v1"

// Build constructs a UISchema from the current run state.
// The schema drives what the frontend renders -- no raw JSX from the backend.
func Build(state domain.PipelineState) UISchema {
	schema := UISchema{
		Version:    schemaVersion,
		RunID:      state.RunID,
		Step:       string(state.Step),
		Components: []Component{progress(state)},
		Actions:    []Action{},
	}

	if state.Step == domain.StepError {
		schema.Components = append(schema.Components, errorBanner(state))
	}
	if state.Input.OriginalPrompt != "" {
		schema.Components = append(schema.Components, inputSummary(state.Input))
	}
	if len(state.TestCases) > 0 {
		schema.Components = append(schema.Components, testCaseGrid(state))
	}
	if state.MigratedPrompt != "" {
		schema.Components = append(schema.Components, promptComparison(state))
	}
	// Gaps and improvements only mean something once their step has run.
	if len(state.PerformanceGaps) > 0 {
		schema.Components = append(schema.Components, performanceGaps(state.PerformanceGaps))
	}
	if state.Step == domain.StepComplete {
		schema.Components = append(schema.Components, improvements(state.Improvements))
		if state.FinalPrompt != "" {
			schema.Actions = append(schema.Actions, Action{
				Type:  ActionCopyFinal,
				Label: "Copy Optimized Prompt",
			})
		}
	}
	if len(state.Logs) > 0 {
		schema.Components = append(schema.Components, logConsole(state))
	}

	// A completed run asks before starting over; a failed one does not.
	if state.Step.Terminal() {
		restart := Action{Type: ActionRestart, Label: "Start New Migration"}
		if state.Step == domain.StepComplete {
			restart.Confirm = &ConfirmConfig{
				Required:        true,
				AcknowledgeText: "Start over with the same input; the current results stay in history",
			}
		}
		schema.Actions = append(schema.Actions, restart)
	}

	return schema
}
