// Package workflows defines the Temporal workflow functions.
package workflows

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/nova-migration/migrate-go/internal/domain"
	"github.com/nova-migration/migrate-go/internal/temporal/activities"
	"github.com/nova-migration/migrate-go/internal/temporal/versioning"
)

// QueryNameState is the Temporal Query handler name for live run state.
const QueryNameState = "state"

// ActivityTimeout bounds every agent call, including each test case.
const ActivityTimeout = 2 * time.Minute

// Preview lengths cap how much of a prompt or output is echoed into the log.
const (
	promptPreviewLen = 200
	outputPreviewLen = 100
)

// TerminationReason describes why the workflow ended.
type TerminationReason string

const (
	ReasonCompleted             TerminationReason = "completed"
	ReasonGenerateError         TerminationReason = "generate_error"
	ReasonMigrateError          TerminationReason = "migrate_error"
	ReasonCompareError          TerminationReason = "compare_error"
	ReasonImproveError          TerminationReason = "improve_error"
	ReasonMissingMigratedPrompt TerminationReason = "missing_migrated_prompt"
)

// MsgMissingMigratedPrompt is the failure recorded when step 5 is guarded.
const MsgMissingMigratedPrompt = "Missing migrated prompt for optimization"

// WorkflowInput is the input to the migration workflow.
type WorkflowInput struct {
	Input       domain.MigrationInput `json:"input"`
	RequestedBy string                `json:"requested_by,omitempty"`
}

// WorkflowResult is the output of the migration workflow and the value of
// the state query. The workflow returns this on all business paths; only
// infra failures produce workflow-level errors. Reason is empty while the
// run is in flight.
type WorkflowResult struct {
	State  domain.PipelineState `json:"state"`
	Reason TerminationReason    `json:"reason,omitempty"`
}

// MigrationWorkflow runs the five agents strictly in order:
//
//	generating -> migrating -> testing -> analyzing -> optimizing -> complete
//
// Any fatal step moves the state to error and ends the run. Test case
// failures in the testing step are recorded per case and do not stop it.
func MigrationWorkflow(ctx workflow.Context, input WorkflowInput) (WorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	info := workflow.GetInfo(ctx)

	r := &run{
		ctx:    ctx,
		result: WorkflowResult{State: domain.NewPipelineState(info.WorkflowExecution.RunID, workflow.Now(ctx), input.Input)},
	}
	if err := workflow.SetQueryHandler(ctx, QueryNameState, func() (WorkflowResult, error) {
		return r.result, nil
	}); err != nil {
		return WorkflowResult{}, fmt.Errorf("register state query: %w", err)
	}

	// Agent calls are paid and not idempotent: no retries.
	actCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: ActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	reason, err := r.pipeline(actCtx, input)
	if err != nil {
		return WorkflowResult{}, err
	}
	r.result.Reason = reason
	if err := domain.ValidatePipelineState(r.result.State); err != nil {
		return WorkflowResult{}, fmt.Errorf("migration workflow: final state: %w", err)
	}
	logger.Info("migration finished", "reason", reason, "step", r.result.State.Step)

	if workflow.GetVersion(ctx, versioning.ChangeRunMetrics, workflow.DefaultVersion, 1) >= 1 {
		publishRunMetrics(ctx, r.result, workflow.Now(ctx))
	}
	return r.result, nil
}

type run struct {
	ctx    workflow.Context
	result WorkflowResult
}

func (r *run) state() *domain.PipelineState { return &r.result.State }

func (r *run) log(msg string) {
	r.state().Log(workflow.Now(r.ctx), msg)
}

func (r *run) enter(step domain.Step, progress, msg string) error {
	if err := r.state().Enter(step, progress); err != nil {
		return fmt.Errorf("migration workflow: %w", err)
	}
	r.log(msg)
	return nil
}

func (r *run) fail(msg string, reason TerminationReason) TerminationReason {
	workflow.GetLogger(r.ctx).Error("migration failed", "reason", reason, "error", msg)
	r.state().Fail(workflow.Now(r.ctx), msg)
	return reason
}

// pipeline returns a termination reason for every business outcome and an
// error only for broken invariants.
func (r *run) pipeline(actCtx workflow.Context, input WorkflowInput) (TerminationReason, error) {
	ctx := r.ctx
	st := r.state()

	// 1. Test cases.
	if err := r.enter(domain.StepGenerating, "Generating test cases...", "Starting test case generation..."); err != nil {
		return "", err
	}
	var genOut activities.GenerateTestCasesOutput
	if err := workflow.ExecuteActivity(actCtx, activities.NameGenerateTestCases, activities.GenerateTestCasesInput{
		RequestedBy: input.RequestedBy,
		Input:       input.Input,
	}).Get(ctx, &genOut); err != nil {
		return r.fail(failureMessage(err), ReasonGenerateError), nil
	}
	st.SetTestCases(genOut.TestCases)
	r.log(fmt.Sprintf("Generated %d test cases", len(genOut.TestCases)))
	st.SetProgress(fmt.Sprintf("Generated %d test cases", len(genOut.TestCases)))

	// 2. Migration.
	if err := r.enter(domain.StepMigrating, "Migrating prompt to Nova format...", "Migrating prompt to Amazon Nova format..."); err != nil {
		return "", err
	}
	var migOut activities.MigratePromptOutput
	if err := workflow.ExecuteActivity(actCtx, activities.NameMigratePrompt, activities.MigratePromptInput{
		Input: input.Input,
	}).Get(ctx, &migOut); err != nil {
		return r.fail(failureMessage(err), ReasonMigrateError), nil
	}
	st.MigratedPrompt = migOut.MigratedPrompt
	if migOut.Warning != "" {
		r.log("Warning: " + migOut.Warning)
	} else {
		r.log("Prompt successfully migrated to Nova format")
	}
	r.log(fmt.Sprintf("Migrated prompt length: %d characters", utf8.RuneCountInString(migOut.MigratedPrompt)))
	r.log(fmt.Sprintf("Migrated prompt preview: %s...", preview(migOut.MigratedPrompt, promptPreviewLen)))
	st.SetProgress("Prompt migrated successfully")

	// 3. Execution, one case at a time.
	if err := r.enter(domain.StepTesting, "Running tests on Amazon Nova...", "Starting Nova test execution..."); err != nil {
		return "", err
	}
	results := make([]domain.TestResult, 0, len(st.TestCases))
	for i, tc := range st.TestCases {
		st.SetProgress(fmt.Sprintf("Running test %d/%d: %s", i+1, len(st.TestCases), tc.TestID))
		st.SetTestStatus(tc.TestID, domain.TestRunning)
		r.log(fmt.Sprintf("Executing test %s...", tc.TestID))

		res := domain.TestResult{TestID: tc.TestID, Input: tc.Input}
		var execOut activities.ExecuteTestOutput
		err := workflow.ExecuteActivity(actCtx, activities.NameExecuteTest, activities.ExecuteTestInput{
			MigratedPrompt: st.MigratedPrompt,
			TestCase:       tc,
		}).Get(ctx, &execOut)
		if err != nil {
			msg := failureMessage(err)
			res.ActualOutput = domain.ErrorOutput(msg)
			st.SetTestStatus(tc.TestID, domain.TestFailed)
			r.log(fmt.Sprintf("Test %s failed: %s", tc.TestID, msg))
		} else {
			res.ActualOutput = execOut.ActualOutput
			st.SetTestStatus(tc.TestID, domain.TestComplete)
			r.log(fmt.Sprintf("Test %s completed: %s...", tc.TestID, preview(string(execOut.ActualOutput), outputPreviewLen)))
		}
		results = append(results, res)
		st.TestResults = results
	}
	st.SetProgress("All tests completed")

	// 4. Comparison.
	if err := r.enter(domain.StepAnalyzing, "Analyzing test results...", "Analyzing performance gaps..."); err != nil {
		return "", err
	}
	var cmpOut activities.CompareOutputsOutput
	if err := workflow.ExecuteActivity(actCtx, activities.NameCompareOutputs, activities.CompareOutputsInput{
		Triples: domain.BuildComparison(st.TestCases, st.TestResults),
	}).Get(ctx, &cmpOut); err != nil {
		return r.fail(failureMessage(err), ReasonCompareError), nil
	}
	st.PerformanceGaps = cmpOut.Gaps
	if st.PerformanceGaps == nil {
		st.PerformanceGaps = []domain.PerformanceGap{}
	}
	r.log(fmt.Sprintf("Identified %d areas for improvement", len(st.PerformanceGaps)))
	st.SetProgress(fmt.Sprintf("Found %d improvement opportunities", len(st.PerformanceGaps)))

	// 5. Improvement. Never called with an empty prompt.
	if err := r.enter(domain.StepOptimizing, "Optimizing prompt...", "Optimizing prompt based on analysis..."); err != nil {
		return "", err
	}
	found := "FOUND"
	if st.MigratedPrompt == "" {
		found = "MISSING"
	}
	r.log("Current migrated prompt: " + found)
	r.log(fmt.Sprintf("Current prompt length: %d", utf8.RuneCountInString(st.MigratedPrompt)))
	if st.MigratedPrompt == "" {
		return r.fail(MsgMissingMigratedPrompt, ReasonMissingMigratedPrompt), nil
	}
	r.log(fmt.Sprintf("Number of performance gaps: %d", len(st.PerformanceGaps)))

	var impOut activities.ImprovePromptOutput
	if err := workflow.ExecuteActivity(actCtx, activities.NameImprovePrompt, activities.ImprovePromptInput{
		CurrentPrompt: st.MigratedPrompt,
		Gaps:          st.PerformanceGaps,
	}).Get(ctx, &impOut); err != nil {
		return r.fail(failureMessage(err), ReasonImproveError), nil
	}
	r.log("Prompt optimization completed")
	r.log(fmt.Sprintf("Final prompt: %s...", preview(impOut.Improvement.ImprovedPrompt, promptPreviewLen)))
	r.log(fmt.Sprintf("Applied %d improvements", len(impOut.Improvement.ChangesApplied)))

	if err := st.Complete(workflow.Now(ctx), impOut.Improvement); err != nil {
		return "", fmt.Errorf("migration workflow: %w", err)
	}
	return ReasonCompleted, nil
}

// publishRunMetrics exports the run summary. Failures are logged only; they
// never change the run's result.
func publishRunMetrics(ctx workflow.Context, res WorkflowResult, now time.Time) {
	mctx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})
	err := workflow.ExecuteActivity(mctx, activities.NamePublishRunMetrics, activities.PublishRunMetricsInput{
		Summary: domain.Summarize(res.State, string(res.Reason), now),
	}).Get(ctx, nil)
	if err != nil {
		workflow.GetLogger(ctx).Warn("publish run metrics failed", "error", err)
	}
}

// failureMessage returns the message the activity failed with, without
// the error type suffix and cause chain Temporal appends in Error().
func failureMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Message() != "" {
		return appErr.Message()
	}
	var timeoutErr *temporal.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "agent call timed out"
	}
	return err.Error()
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
