package querier

import (
	"context"

	"github.com/nova-migration/migrate-go/internal/temporal/workflows"
)

// WorkflowQuerier starts migration runs and reads their state. Used by the
// HTTP API, AG-UI streamer, CLI, and MCP server.
type WorkflowQuerier interface {
	StartMigration(ctx context.Context, req StartRequest) (StartResult, error)
	RestartMigration(ctx context.Context, workflowID, requestedBy string) (StartResult, error)
	ListWorkflows(ctx context.Context, opts ListOptions) ([]WorkflowSummary, error)
	GetWorkflowState(ctx context.Context, workflowID string) (*workflows.WorkflowResult, error)
	DescribeWorkflow(ctx context.Context, workflowID string) (*WorkflowDescription, error)
}
