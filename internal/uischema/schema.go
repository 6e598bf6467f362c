// Package uischema defines the typed UI contract emitted by the backend.
// The frontend renders dynamic components based on this schema -- it never
// decides what to show on its own.
package uischema

// UISchema is the top-level schema the backend emits for a run state.
type UISchema struct {
	Version    string      `json:"ui_schema_version"`
	RunID      string      `json:"run_id"`
	Step       string      `json:"step"`
	Components []Component `json:"components"`
	Actions    []Action    `json:"actions"`
}

// ComponentType identifies what frontend component to render.
type ComponentType string

const (
	ComponentProgress         ComponentType = "progress"
	ComponentErrorBanner      ComponentType = "error_banner"
	ComponentInputSummary     ComponentType = "input_summary"
	ComponentTestCaseGrid     ComponentType = "test_case_grid"
	ComponentPromptComparison ComponentType = "prompt_comparison"
	ComponentPerformanceGaps  ComponentType = "performance_gaps"
	ComponentImprovements     ComponentType = "improvements"
	ComponentLogConsole       ComponentType = "log_console"
)

// Visibility controls component rendering.
type Visibility string

const (
	VisibilityVisible   Visibility = "visible"
	VisibilityHidden    Visibility = "hidden"
	VisibilityCollapsed Visibility = "collapsed"
)

// Component is a single renderable UI element.
type Component struct {
	Type       ComponentType  `json:"type"`
	Title      string         `json:"title"`
	Priority   int            `json:"priority"`
	Visibility Visibility     `json:"visibility"`
	Data       map[string]any `json:"data,omitempty"`
}

// ActionUIType classifies the user-facing action.
type ActionUIType string

const (
	ActionRestart   ActionUIType = "restart"
	ActionCopyFinal ActionUIType = "copy_final_prompt"
)

// ConfirmConfig describes confirmation requirements for destructive actions.
type ConfirmConfig struct {
	Required        bool   `json:"required"`
	AcknowledgeText string `json:"acknowledge_text,omitempty"`
}

// Action is a user-triggerable operation from the UI.
type Action struct {
	Type    ActionUIType   `json:"type"`
	Label   string         `json:"label"`
	Confirm *ConfirmConfig `json:"confirm,omitempty"`
}
