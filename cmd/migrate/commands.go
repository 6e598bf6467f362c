package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nova-migration/migrate-go/internal/domain"
	"github.com/nova-migration/migrate-go/internal/promptdiff"
	"github.com/nova-migration/migrate-go/internal/temporal/querier"
	"github.com/nova-migration/migrate-go/internal/temporal/versioning"
	"github.com/nova-migration/migrate-go/internal/temporal/workflows"
)

// dialFunc returns a querier and a close func.
type dialFunc func() (querier.WorkflowQuerier, func(), error)

// pollInterval is how often "run --wait" re-reads state.
var pollInterval = 2 * time.Second

func newRootCmd(dial dialFunc) *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Migrate system prompts to Amazon Nova",
		SilenceUsage: true,
	}
	root.AddCommand(
		newRunCmd(dial),
		newStatusCmd(dial),
		newListCmd(dial),
		newRestartCmd(dial),
		newDiffCmd(dial),
	)
	return root
}

func withQuerier(dial dialFunc, fn func(q querier.WorkflowQuerier) error) error {
	q, closeFn, err := dial()
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(q)
}

func newRunCmd(dial dialFunc) *cobra.Command {
	var (
		in          domain.MigrationInput
		promptFile  string
		queue       string
		requestedBy string
		wait        bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a migration run",
		Long: `Start a migration run for one system prompt.

The prompt is read from --prompt, or from --prompt-file ("-" reads stdin).
Runs go to the batch queue unless --queue pipeline is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if promptFile != "" {
				data, err := readPrompt(cmd.InOrStdin(), promptFile)
				if err != nil {
					return err
				}
				in.OriginalPrompt = data
			}
			if err := domain.ValidateMigrationInput(in); err != nil {
				return err
			}
			taskQueue, err := queueName(queue)
			if err != nil {
				return err
			}

			return withQuerier(dial, func(q querier.WorkflowQuerier) error {
				ctx := cmd.Context()
				res, err := q.StartMigration(ctx, querier.StartRequest{
					Input:       in,
					RequestedBy: requestedBy,
					TaskQueue:   taskQueue,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "started workflow %s (run=%s)\n", res.WorkflowID, res.RunID)
				if !wait {
					return nil
				}
				result, err := waitForTerminal(ctx, q, res.WorkflowID, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), res.WorkflowID, result)
				if result.State.Step == domain.StepError {
					return fmt.Errorf("migration failed: %s", result.State.Error)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", result.State.FinalPrompt)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Provider, "provider", "", "source provider: openai, anthropic or google (required)")
	f.StringVar(&in.Model, "model", "", "source model name (required)")
	f.StringVar(&in.OriginalPrompt, "prompt", "", "system prompt text")
	f.StringVar(&promptFile, "prompt-file", "", `file holding the system prompt, "-" for stdin`)
	f.StringVar(&queue, "queue", "batch", "task queue: pipeline or batch")
	f.StringVar(&requestedBy, "requested-by", os.Getenv("USER"), "requester recorded on the run")
	f.BoolVar(&wait, "wait", false, "poll until the run finishes and print the optimized prompt")
	return cmd
}

func newStatusCmd(dial dialFunc) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status <workflow-id>",
		Short: "Show the state of a migration run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQuerier(dial, func(q querier.WorkflowQuerier) error {
				result, err := q.GetWorkflowState(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				printSummary(cmd.OutOrStdout(), args[0], result)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full state as JSON")
	return cmd
}

func newListCmd(dial dialFunc) *cobra.Command {
	var status, queue string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent migration runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := querier.ListOptions{StatusFilter: status}
			if queue != "" {
				name, err := queueName(queue)
				if err != nil {
					return err
				}
				opts.TaskQueue = name
			}
			return withQuerier(dial, func(q querier.WorkflowQuerier) error {
				runs, err := q.ListWorkflows(cmd.Context(), opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, r := range runs {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", r.WorkflowID, r.Status, r.TaskQueue, r.StartTime.UTC().Format(time.RFC3339))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by execution status, e.g. Running")
	cmd.Flags().StringVar(&queue, "queue", "", "filter by task queue: pipeline or batch")
	return cmd
}

func newRestartCmd(dial dialFunc) *cobra.Command {
	var requestedBy string
	cmd := &cobra.Command{
		Use:   "restart <workflow-id>",
		Short: "Start a fresh run with the input of a finished run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQuerier(dial, func(q querier.WorkflowQuerier) error {
				res, err := q.RestartMigration(cmd.Context(), args[0], requestedBy)
				if errors.Is(err, querier.ErrRunInProgress) {
					return fmt.Errorf("%s is still running; wait for it to finish", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "started workflow %s (run=%s)\n", res.WorkflowID, res.RunID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&requestedBy, "requested-by", os.Getenv("USER"), "requester recorded on the new run")
	return cmd
}

func newDiffCmd(dial dialFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <workflow-id>",
		Short: "Show a unified diff of the migrated prompt against the optimized prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQuerier(dial, func(q querier.WorkflowQuerier) error {
				result, err := q.GetWorkflowState(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if result.State.Step != domain.StepComplete {
					return fmt.Errorf("%s has no optimized prompt (step %s)", args[0], result.State.Step)
				}
				out, err := promptdiff.Unified(result.State.MigratedPrompt, result.State.FinalPrompt, "migrated", "optimized")
				if err != nil {
					return err
				}
				if out == "" {
					out = "prompts are identical\n"
				}
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
}

func queueName(short string) (string, error) {
	switch short {
	case "pipeline", versioning.QueuePipeline:
		return versioning.QueuePipeline, nil
	case "batch", versioning.QueueBatch:
		return versioning.QueueBatch, nil
	}
	return "", fmt.Errorf("unknown queue %q (want pipeline or batch)", short)
}

func readPrompt(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	return string(data), nil
}

// waitForTerminal polls until the run reaches complete or error, echoing
// new log lines to w as they appear.
func waitForTerminal(ctx context.Context, q querier.WorkflowQuerier, id string, w io.Writer) (*workflows.WorkflowResult, error) {
	seen := 0
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		result, err := q.GetWorkflowState(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, line := range result.State.Logs[min(seen, len(result.State.Logs)):] {
			fmt.Fprintln(w, line)
		}
		seen = len(result.State.Logs)
		if result.State.Step.Terminal() {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func printSummary(w io.Writer, id string, result *workflows.WorkflowResult) {
	s := result.State
	fmt.Fprintf(w, "workflow:  %s\n", id)
	fmt.Fprintf(w, "step:      %s (%d/%d)\n", s.Step, s.Progress.Current, s.Progress.Total)
	if s.Progress.Message != "" {
		fmt.Fprintf(w, "progress:  %s\n", s.Progress.Message)
	}
	fmt.Fprintf(w, "tests:     %d total, %d complete, %d failed\n",
		len(s.TestCases), s.CountStatus(domain.TestComplete), s.CountStatus(domain.TestFailed))
	if len(s.PerformanceGaps) > 0 {
		fmt.Fprintf(w, "gaps:      %d\n", len(s.PerformanceGaps))
	}
	if len(s.Improvements) > 0 {
		fmt.Fprintf(w, "changes:   %s\n", strings.Join(s.Improvements, "; "))
	}
	if result.Reason != "" {
		fmt.Fprintf(w, "outcome:   %s\n", result.Reason)
	}
	if s.Error != "" {
		fmt.Fprintf(w, "error:     %s\n", s.Error)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
