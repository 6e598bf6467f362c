// Package mcpserver exposes prompt migration runs via MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nova-migration/migrate-go/internal/domain"
	"github.com/nova-migration/migrate-go/internal/temporal/querier"
	"github.com/nova-migration/migrate-go/internal/uischema"
)

// Requester is recorded as RequestedBy on runs started through MCP.
const Requester = "mcp"

// RegisterTools registers all migration MCP tools on the given server.
func RegisterTools(server *mcp.Server, q querier.WorkflowQuerier) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "start_migration",
			Description: "Start migrating a system prompt from its source provider to Amazon Nova",
		},
		startMigrationHandler(q),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_migration_state",
			Description: "Get the live pipeline state of a migration run: step, test statuses, prompts, gaps, and logs",
		},
		getMigrationStateHandler(q),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_migration_ui",
			Description: "Get UI schema (components + actions) for rendering a migration run",
		},
		getMigrationUIHandler(q),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_migrations",
			Description: "List recent migration runs with status and start time",
		},
		listMigrationsHandler(q),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "restart_migration",
			Description: "Start a fresh run with the same input as a finished migration",
		},
		restartMigrationHandler(q),
	)
}

type startMigrationInput struct {
	Provider       string `json:"provider" jsonschema:"source provider: openai, anthropic or google"`
	Model          string `json:"model" jsonschema:"source model name"`
	OriginalPrompt string `json:"original_prompt" jsonschema:"the system prompt to migrate"`
}

func startMigrationHandler(q querier.WorkflowQuerier) mcp.ToolHandlerFor[startMigrationInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input startMigrationInput) (*mcp.CallToolResult, any, error) {
		in := domain.MigrationInput{
			Provider:       input.Provider,
			Model:          input.Model,
			OriginalPrompt: input.OriginalPrompt,
		}
		if err := domain.ValidateMigrationInput(in); err != nil {
			return errorResult(err.Error()), nil, nil
		}

		res, err := q.StartMigration(ctx, querier.StartRequest{Input: in, RequestedBy: Requester})
		if err != nil {
			return nil, nil, fmt.Errorf("start_migration: %w", err)
		}
		return textResult(res)
	}
}

type workflowIDInput struct {
	WorkflowID string `json:"workflow_id" jsonschema:"migration workflow id, e.g. migration-<uuid>"`
}

func getMigrationStateHandler(q querier.WorkflowQuerier) mcp.ToolHandlerFor[workflowIDInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input workflowIDInput) (*mcp.CallToolResult, any, error) {
		if input.WorkflowID == "" {
			return errorResult("workflow_id is required"), nil, nil
		}

		result, err := q.GetWorkflowState(ctx, input.WorkflowID)
		if err != nil {
			return nil, nil, fmt.Errorf("get_migration_state: %w", err)
		}
		return textResult(result)
	}
}

func getMigrationUIHandler(q querier.WorkflowQuerier) mcp.ToolHandlerFor[workflowIDInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input workflowIDInput) (*mcp.CallToolResult, any, error) {
		if input.WorkflowID == "" {
			return errorResult("workflow_id is required"), nil, nil
		}

		result, err := q.GetWorkflowState(ctx, input.WorkflowID)
		if err != nil {
			return nil, nil, fmt.Errorf("get_migration_ui: %w", err)
		}
		return textResult(uischema.Build(result.State))
	}
}

type listMigrationsInput struct {
	Status string `json:"status,omitempty" jsonschema:"optional Temporal execution status filter, e.g. Running or Completed"`
}

func listMigrationsHandler(q querier.WorkflowQuerier) mcp.ToolHandlerFor[listMigrationsInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input listMigrationsInput) (*mcp.CallToolResult, any, error) {
		runs, err := q.ListWorkflows(ctx, querier.ListOptions{StatusFilter: input.Status})
		if err != nil {
			return nil, nil, fmt.Errorf("list_migrations: %w", err)
		}
		return textResult(runs)
	}
}

func restartMigrationHandler(q querier.WorkflowQuerier) mcp.ToolHandlerFor[workflowIDInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input workflowIDInput) (*mcp.CallToolResult, any, error) {
		if input.WorkflowID == "" {
			return errorResult("workflow_id is required"), nil, nil
		}

		res, err := q.RestartMigration(ctx, input.WorkflowID, Requester)
		if errors.Is(err, querier.ErrRunInProgress) {
			return errorResult(err.Error()), nil, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("restart_migration: %w", err)
		}
		return textResult(res)
	}
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
