// Package versioning defines workflow versions and task queue names.
package versioning

const (
	// Workflow versions for determinism tracking.
	MigrationV1 = "migration-v1"

	// Change ids passed to workflow.GetVersion.
	ChangeRunMetrics = "run-metrics"

	// Task queues. Interactive runs started from the API or MCP land on
	// QueuePipeline; bulk runs from the CLI use QueueBatch so they cannot
	// starve interactive users of agent capacity.
	QueuePipeline = "migrate-pipeline"
	QueueBatch    = "migrate-batch"
)
