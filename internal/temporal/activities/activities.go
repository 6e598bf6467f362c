package activities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/nova-migration/migrate-go/internal/agent"
	"github.com/nova-migration/migrate-go/internal/domain"
	"github.com/nova-migration/migrate-go/internal/observability"
	"github.com/nova-migration/migrate-go/internal/ratelimit"
)

// Activity names registered with the worker and used by the workflow.
const (
	NameGenerateTestCases = "GenerateTestCases"
	NameMigratePrompt     = "MigratePrompt"
	NameExecuteTest       = "ExecuteTest"
	NameCompareOutputs    = "CompareOutputs"
	NameImprovePrompt     = "ImprovePrompt"
	NamePublishRunMetrics = "PublishRunMetrics"
)

// Application error types returned by the activities. The error message is
// what the run records, so it carries no wrapping prefixes.
const (
	ErrTypeBudgetExceeded  = "RunBudgetExceeded"
	ErrTypeAgentStatus     = "AgentStatus"
	ErrTypeAdapterMismatch = "AdapterMismatch"
	ErrTypeAgent           = "AgentError"
)

// Agents is the pipeline agent surface consumed by activities.
// *agent.Service satisfies it.
type Agents interface {
	GenerateTestCases(ctx context.Context, in domain.MigrationInput) ([]domain.TestCase, error)
	MigratePrompt(ctx context.Context, in domain.MigrationInput) (string, error)
	ExecuteTest(ctx context.Context, migratedPrompt string, tc domain.TestCase) (json.RawMessage, error)
	CompareOutputs(ctx context.Context, triples []domain.ComparisonTriple) ([]domain.PerformanceGap, error)
	ImprovePrompt(ctx context.Context, currentPrompt string, gaps []domain.PerformanceGap) (domain.Improvement, error)
}

// RunPublisher exports run summaries. Implemented by cloudwatch.Client.
type RunPublisher interface {
	PublishRun(ctx context.Context, sum domain.RunSummary) error
}

// Activities holds the dependencies for all Temporal activities.
// Each method is registered as a Temporal activity.
type Activities struct {
	Agents    Agents
	Publisher RunPublisher           // nil = run metrics are not exported
	Metrics   *observability.Metrics // nil = no OTel instruments
	Budget    *ratelimit.RunBudget   // nil = no budget enforcement
}

// agentFailure converts an agent error into the application error seen by
// the workflow. A non-2xx response is reported by its status line alone.
// The full chain goes to the activity log.
func agentFailure(ctx context.Context, name string, err error) error {
	activity.GetLogger(ctx).Error("agent call failed", "activity", name, "error", err)

	msg, errType := err.Error(), ErrTypeAgent
	var se *agent.StatusError
	switch {
	case errors.As(err, &se):
		msg, errType = se.Error(), ErrTypeAgentStatus
	case errors.Is(err, agent.ErrAdapterMismatch):
		errType = ErrTypeAdapterMismatch
	}
	return temporal.NewApplicationErrorWithCause(msg, errType, err)
}

func (a *Activities) record(ctx context.Context, name string, err error) {
	if a.Metrics == nil {
		return
	}
	a.Metrics.RecordActivity(ctx, name)
	a.Metrics.RecordAgentCall(ctx, name, err == nil)
}

// GenerateTestCases asks the test generator for cases. It is the first
// activity of every run, so the requester's run budget is charged here.
func (a *Activities) GenerateTestCases(ctx context.Context, in GenerateTestCasesInput) (GenerateTestCasesOutput, error) {
	who := requester(in.RequestedBy)
	if err := a.Budget.Allow(who); err != nil {
		return GenerateTestCasesOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeBudgetExceeded, nil)
	}
	if a.Budget != nil {
		activity.GetLogger(ctx).Info("run budget charged", "requester", who, "remaining", a.Budget.Remaining(who))
	}
	cases, err := a.Agents.GenerateTestCases(ctx, in.Input)
	a.record(ctx, NameGenerateTestCases, err)
	if err != nil {
		return GenerateTestCasesOutput{}, agentFailure(ctx, NameGenerateTestCases, err)
	}
	return GenerateTestCasesOutput{TestCases: cases}, nil
}

// MigratePrompt asks the migrator for the target-format prompt. A response
// without an extractable prompt is not an activity failure: the output
// carries an empty prompt and a warning, and the workflow decides.
func (a *Activities) MigratePrompt(ctx context.Context, in MigratePromptInput) (MigratePromptOutput, error) {
	prompt, err := a.Agents.MigratePrompt(ctx, in.Input)
	a.record(ctx, NameMigratePrompt, err)
	if errors.Is(err, agent.ErrAdapterMismatch) {
		activity.GetLogger(ctx).Warn("migrator returned no prompt", "error", err)
		return MigratePromptOutput{Warning: err.Error()}, nil
	}
	if err != nil {
		return MigratePromptOutput{}, agentFailure(ctx, NameMigratePrompt, err)
	}
	return MigratePromptOutput{MigratedPrompt: prompt}, nil
}

// ExecuteTest runs a single test case on the target model.
func (a *Activities) ExecuteTest(ctx context.Context, in ExecuteTestInput) (ExecuteTestOutput, error) {
	out, err := a.Agents.ExecuteTest(ctx, in.MigratedPrompt, in.TestCase)
	a.record(ctx, NameExecuteTest, err)
	if a.Metrics != nil {
		status := domain.TestComplete
		if err != nil {
			status = domain.TestFailed
		}
		a.Metrics.RecordTestOutcome(ctx, string(status))
	}
	if err != nil {
		activity.GetLogger(ctx).Warn("test case failed", "test_id", in.TestCase.TestID)
		return ExecuteTestOutput{}, agentFailure(ctx, NameExecuteTest, err)
	}
	return ExecuteTestOutput{ActualOutput: out}, nil
}

// CompareOutputs asks the comparator for performance gaps.
func (a *Activities) CompareOutputs(ctx context.Context, in CompareOutputsInput) (CompareOutputsOutput, error) {
	gaps, err := a.Agents.CompareOutputs(ctx, in.Triples)
	a.record(ctx, NameCompareOutputs, err)
	if err != nil {
		return CompareOutputsOutput{}, agentFailure(ctx, NameCompareOutputs, err)
	}
	return CompareOutputsOutput{Gaps: gaps}, nil
}

// ImprovePrompt asks the improver to revise the migrated prompt.
func (a *Activities) ImprovePrompt(ctx context.Context, in ImprovePromptInput) (ImprovePromptOutput, error) {
	if in.CurrentPrompt == "" {
		return ImprovePromptOutput{}, temporal.NewNonRetryableApplicationError(
			"current prompt is empty", "EmptyPrompt", nil)
	}
	imp, err := a.Agents.ImprovePrompt(ctx, in.CurrentPrompt, in.Gaps)
	a.record(ctx, NameImprovePrompt, err)
	if err != nil {
		return ImprovePromptOutput{}, agentFailure(ctx, NameImprovePrompt, err)
	}
	return ImprovePromptOutput{Improvement: imp}, nil
}

// PublishRunMetrics exports the finished run's figures. It records the OTel
// instruments even when no external publisher is configured.
func (a *Activities) PublishRunMetrics(ctx context.Context, in PublishRunMetricsInput) error {
	if a.Metrics != nil {
		a.Metrics.RecordRun(ctx, in.Summary.Outcome, time.Duration(in.Summary.DurationSeconds*float64(time.Second)))
		a.Metrics.RecordActivity(ctx, NamePublishRunMetrics)
	}
	if a.Publisher == nil {
		return nil
	}
	if err := a.Publisher.PublishRun(ctx, in.Summary); err != nil {
		return fmt.Errorf("publish run metrics activity: %w", err)
	}
	return nil
}

func requester(id string) string {
	if id == "" {
		return "anonymous"
	}
	return id
}
