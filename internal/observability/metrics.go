package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds OTel metric instruments for the migration pipeline.
type Metrics struct {
	RunCount      metric.Int64Counter
	RunDuration   metric.Float64Histogram
	AgentCalls    metric.Int64Counter
	TestOutcomes  metric.Int64Counter
	ActivityCalls metric.Int64Counter
}

// NewMetrics creates the migration metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("migrate")

	runCount, err := meter.Int64Counter("migrate.run.count",
		metric.WithDescription("Number of migration runs finished, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram("migrate.run.duration_seconds",
		metric.WithDescription("Wall time of a migration run"),
	)
	if err != nil {
		return nil, err
	}

	agentCalls, err := meter.Int64Counter("migrate.agent.calls",
		metric.WithDescription("Number of hosted agent calls, by agent and result"),
	)
	if err != nil {
		return nil, err
	}

	testOutcomes, err := meter.Int64Counter("migrate.test.outcomes",
		metric.WithDescription("Executed test cases, by status"),
	)
	if err != nil {
		return nil, err
	}

	activityCalls, err := meter.Int64Counter("migrate.activity.calls",
		metric.WithDescription("Number of activity invocations"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RunCount:      runCount,
		RunDuration:   runDuration,
		AgentCalls:    agentCalls,
		TestOutcomes:  testOutcomes,
		ActivityCalls: activityCalls,
	}, nil
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(ctx context.Context, reason string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("reason", reason))
	m.RunCount.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordAgentCall records one agent call and whether it succeeded.
func (m *Metrics) RecordAgentCall(ctx context.Context, agent string, ok bool) {
	m.AgentCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("agent", agent),
			attribute.Bool("ok", ok),
		),
	)
}

// RecordTestOutcome records an executed test case.
func (m *Metrics) RecordTestOutcome(ctx context.Context, status string) {
	m.TestOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordActivity records an activity invocation.
func (m *Metrics) RecordActivity(ctx context.Context, name string) {
	m.ActivityCalls.Add(ctx, 1,
		metric.WithAttributes(attribute.String("activity", name)),
	)
}
