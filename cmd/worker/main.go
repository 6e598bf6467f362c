// Command worker runs the Temporal workers for prompt migration runs.
// Supports stub mode (fixture agents) and production mode (hosted agents).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"golang.org/x/sync/errgroup"

	"github.com/nova-migration/migrate-go/internal/agent"
	"github.com/nova-migration/migrate-go/internal/config"
	awsauth "github.com/nova-migration/migrate-go/internal/connectors/aws"
	"github.com/nova-migration/migrate-go/internal/connectors/aws/cloudwatch"
	"github.com/nova-migration/migrate-go/internal/observability"
	"github.com/nova-migration/migrate-go/internal/ratelimit"
	"github.com/nova-migration/migrate-go/internal/temporal/activities"
	"github.com/nova-migration/migrate-go/internal/temporal/queues"
	"github.com/nova-migration/migrate-go/internal/temporal/workflows"
	"github.com/nova-migration/migrate-go/internal/testutil"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(ctx, cfg.TracerConfig("worker"))
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	queueNames, err := queues.ParseQueues(cfg.Queues)
	if err != nil {
		return fmt.Errorf("queues: %w", err)
	}

	acts, err := buildActivities(ctx, cfg, logger)
	if err != nil {
		return err
	}

	c, err := client.Dial(client.Options{
		Logger: observability.NewTemporalSlogAdapter(logger),
	})
	if err != nil {
		return fmt.Errorf("unable to create Temporal client: %w", err)
	}
	defer c.Close()

	configs := queues.DefaultConfigs()
	eg, egCtx := errgroup.WithContext(ctx)
	for _, name := range queueNames {
		qc := configs[name]
		w := worker.New(c, qc.Name, qc.Options)
		w.RegisterWorkflow(workflows.MigrationWorkflow)
		w.RegisterActivity(acts)

		eg.Go(func() error {
			if err := w.Start(); err != nil {
				return fmt.Errorf("start worker on %s: %w", qc.Name, err)
			}
			logger.Info("worker started", "queue", qc.Name, "mode", cfg.Mode)
			<-egCtx.Done()
			w.Stop()
			logger.Info("worker stopped", "queue", qc.Name)
			return nil
		})
	}
	return eg.Wait()
}

// buildActivities wires the agent surface for the configured mode plus the
// optional run budget, OTel instruments and CloudWatch publisher.
func buildActivities(ctx context.Context, cfg config.Config, logger *slog.Logger) (*activities.Activities, error) {
	acts := &activities.Activities{}

	switch cfg.Mode {
	case config.ModeProduction:
		limiter := ratelimit.NewAgentLimiter(cfg.AgentRPS, 1)
		acts.Agents = agent.NewService(agent.New(cfg.AgentConfig(), limiter), cfg.Agents)
	default:
		stub := &testutil.StubAgents{IDs: cfg.Agents, FixturesDir: cfg.FixturesDir}
		acts.Agents = agent.NewService(stub, cfg.Agents)
	}

	if cfg.RunBudget > 0 {
		acts.Budget = ratelimit.NewRunBudget(cfg.RunBudget, cfg.BudgetSpan)
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		logger.Warn("metrics init failed", "error", err)
	} else {
		acts.Metrics = metrics
	}

	if cfg.CloudWatchNamespace != "" || cfg.MetricsRoleARN != "" {
		awsCfg, err := awsauth.NewAWSConfig(ctx, cfg.AWSRegion, cfg.AWSProfile, cfg.MetricsRoleARN)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		acts.Publisher = cloudwatch.New(awsCfg, cfg.CloudWatchNamespace)
	}
	return acts, nil
}
