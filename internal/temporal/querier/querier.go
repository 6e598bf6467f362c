package querier

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	commonpb "go.temporal.io/api/common/v1"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"

	"github.com/nova-migration/migrate-go/internal/domain"
	"github.com/nova-migration/migrate-go/internal/temporal/versioning"
	"github.com/nova-migration/migrate-go/internal/temporal/workflows"
)

// WorkflowIDPrefix prefixes every migration workflow id.
const WorkflowIDPrefix = "migration-"

// TemporalQuerier implements WorkflowQuerier using a Temporal client.
type TemporalQuerier struct {
	client client.Client
	newID  func() string
}

// New creates a TemporalQuerier.
func New(c client.Client) *TemporalQuerier {
	return &TemporalQuerier{client: c, newID: func() string { return WorkflowIDPrefix + uuid.NewString() }}
}

// StartMigration validates the input and starts a MigrationWorkflow. The
// input is stored in the memo so the run can be restarted later.
func (q *TemporalQuerier) StartMigration(ctx context.Context, req StartRequest) (StartResult, error) {
	if err := domain.ValidateMigrationInput(req.Input); err != nil {
		return StartResult{}, err
	}
	queue := req.TaskQueue
	if queue == "" {
		queue = versioning.QueuePipeline
	}

	run, err := q.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        q.newID(),
		TaskQueue: queue,
		Memo: map[string]any{
			MemoInput:       req.Input,
			MemoRequestedBy: req.RequestedBy,
			MemoVersion:     versioning.MigrationV1,
		},
	}, workflows.MigrationWorkflow, workflows.WorkflowInput{
		Input:       req.Input,
		RequestedBy: req.RequestedBy,
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("start migration: %w", err)
	}
	return StartResult{WorkflowID: run.GetID(), RunID: run.GetRunID()}, nil
}

// RestartMigration starts a fresh run with the input of a finished run.
// Nothing carries over from the previous run except its input.
func (q *TemporalQuerier) RestartMigration(ctx context.Context, workflowID, requestedBy string) (StartResult, error) {
	desc, err := q.DescribeWorkflow(ctx, workflowID)
	if err != nil {
		return StartResult{}, err
	}
	if desc.Open {
		return StartResult{}, fmt.Errorf("restart %s: %w", workflowID, ErrRunInProgress)
	}
	if desc.Input == nil {
		return StartResult{}, fmt.Errorf("restart %s: run has no recorded input", workflowID)
	}
	if requestedBy == "" {
		requestedBy = desc.RequestedBy
	}
	return q.StartMigration(ctx, StartRequest{
		Input:       *desc.Input,
		RequestedBy: requestedBy,
		TaskQueue:   desc.TaskQueue,
	})
}

// ListWorkflows lists migration executions using Temporal's visibility API.
func (q *TemporalQuerier) ListWorkflows(ctx context.Context, opts ListOptions) ([]WorkflowSummary, error) {
	query := `WorkflowType = "MigrationWorkflow"`
	if opts.TaskQueue != "" {
		query += fmt.Sprintf(" AND TaskQueue = %q", opts.TaskQueue)
	}
	if opts.StatusFilter != "" {
		query += fmt.Sprintf(" AND ExecutionStatus = %q", opts.StatusFilter)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	resp, err := q.client.ListWorkflow(ctx, &workflowservice.ListWorkflowExecutionsRequest{
		Query:    query,
		PageSize: int32(pageSize),
	})
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}

	summaries := make([]WorkflowSummary, 0, len(resp.Executions))
	for _, exec := range resp.Executions {
		s := WorkflowSummary{
			WorkflowID: exec.Execution.WorkflowId,
			RunID:      exec.Execution.RunId,
			Status:     exec.Status.String(),
			StartTime:  exec.StartTime.AsTime(),
			TaskQueue:  exec.TaskQueue,
		}
		if exec.CloseTime != nil {
			s.CloseTime = exec.CloseTime.AsTime()
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// GetWorkflowState returns the current workflow result.
// For completed workflows, extracts the result directly.
// For running workflows, uses the Query handler.
func (q *TemporalQuerier) GetWorkflowState(ctx context.Context, workflowID string) (*workflows.WorkflowResult, error) {
	desc, err := q.client.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		return nil, fmt.Errorf("describe workflow: %w", err)
	}

	status := desc.WorkflowExecutionInfo.Status
	if status == enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED {
		run := q.client.GetWorkflow(ctx, workflowID, "")
		var result workflows.WorkflowResult
		if err := run.Get(ctx, &result); err != nil {
			return nil, fmt.Errorf("get workflow result: %w", err)
		}
		return &result, nil
	}

	if status == enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING {
		resp, err := q.client.QueryWorkflow(ctx, workflowID, "", workflows.QueryNameState)
		if err != nil {
			return nil, fmt.Errorf("query workflow state: %w", err)
		}
		var result workflows.WorkflowResult
		if err := resp.Get(&result); err != nil {
			return nil, fmt.Errorf("decode query result: %w", err)
		}
		return &result, nil
	}

	return nil, fmt.Errorf("workflow %s has status %s, cannot read state", workflowID, status.String())
}

// DescribeWorkflow returns detailed information about a workflow execution,
// including the input recorded in its memo.
func (q *TemporalQuerier) DescribeWorkflow(ctx context.Context, workflowID string) (*WorkflowDescription, error) {
	desc, err := q.client.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		return nil, fmt.Errorf("describe workflow: %w", err)
	}

	info := desc.WorkflowExecutionInfo
	wd := &WorkflowDescription{
		WorkflowSummary: WorkflowSummary{
			WorkflowID: info.Execution.WorkflowId,
			RunID:      info.Execution.RunId,
			Status:     info.Status.String(),
			StartTime:  info.StartTime.AsTime(),
			TaskQueue:  info.TaskQueue,
		},
		Open: info.Status == enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING,
	}
	if info.CloseTime != nil {
		wd.CloseTime = info.CloseTime.AsTime()
	}
	if fields := info.GetMemo().GetFields(); fields != nil {
		if p := fields[MemoInput]; p != nil {
			var in domain.MigrationInput
			if err := decodeMemo(p, &in); err != nil {
				return nil, fmt.Errorf("describe workflow: decode memo input: %w", err)
			}
			wd.Input = &in
		}
		if p := fields[MemoRequestedBy]; p != nil {
			if err := decodeMemo(p, &wd.RequestedBy); err != nil {
				return nil, fmt.Errorf("describe workflow: decode memo requested_by: %w", err)
			}
		}
	}
	return wd, nil
}

func decodeMemo(p *commonpb.Payload, target any) error {
	return converter.GetDefaultDataConverter().FromPayload(p, target)
}
