// Package querier starts migration workflows and provides read access to
// their state.
package querier

import (
	"errors"
	"time"

	"github.com/nova-migration/migrate-go/internal/domain"
)

// ErrRunInProgress is returned when restarting a run that has not finished.
var ErrRunInProgress = errors.New("migration is still running")

// Memo keys written at start and read back by Describe and Restart.
const (
	MemoInput       = "input"
	MemoRequestedBy = "requested_by"
	MemoVersion     = "version"
)

// StartRequest describes a new migration run.
type StartRequest struct {
	Input       domain.MigrationInput
	RequestedBy string
	// TaskQueue defaults to the interactive pipeline queue.
	TaskQueue string
}

// StartResult identifies a started run.
type StartResult struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// ListOptions controls filtering for ListWorkflows.
type ListOptions struct {
	// TaskQueue filters by task queue name. Empty means no filter.
	TaskQueue string
	// StatusFilter filters by workflow status (e.g. "Running", "Completed").
	StatusFilter string
	// PageSize limits the number of results.
	PageSize int
}

// WorkflowSummary is a lightweight overview of a workflow execution.
type WorkflowSummary struct {
	WorkflowID string    `json:"workflow_id"`
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"start_time"`
	CloseTime  time.Time `json:"close_time,omitempty"`
	TaskQueue  string    `json:"task_queue"`
}

// WorkflowDescription provides detailed info about a workflow execution.
type WorkflowDescription struct {
	WorkflowSummary
	Open        bool                   `json:"open"`
	Input       *domain.MigrationInput `json:"input,omitempty"`
	RequestedBy string                 `json:"requested_by,omitempty"`
}
