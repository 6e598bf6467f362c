// Package queues defines per-queue worker configuration for task-queue partitioning.
package queues

import (
	"fmt"
	"strings"

	"go.temporal.io/sdk/worker"

	"github.com/nova-migration/migrate-go/internal/temporal/versioning"
)

// QueueConfig holds worker options for a single task queue.
type QueueConfig struct {
	Name    string
	Options worker.Options
}

// DefaultConfigs returns the standard per-queue worker options.
//
//   - QueuePipeline: interactive runs, each holding one agent call at a time
//   - QueueBatch: bulk runs, tight concurrency to protect the agent endpoint
func DefaultConfigs() map[string]QueueConfig {
	return map[string]QueueConfig{
		versioning.QueuePipeline: {
			Name: versioning.QueuePipeline,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     10,
				MaxConcurrentWorkflowTaskExecutionSize: 10,
			},
		},
		versioning.QueueBatch: {
			Name: versioning.QueueBatch,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     2,
				MaxConcurrentWorkflowTaskExecutionSize: 2,
			},
		},
	}
}

// ParseQueues parses a comma-separated queue list (e.g. "pipeline,batch")
// into a set of queue names. Accepts both short names ("batch") and
// full names ("migrate-batch"). Returns an error for unknown queues.
func ParseQueues(raw string) ([]string, error) {
	if raw == "" {
		return []string{versioning.QueuePipeline}, nil
	}

	shortNames := map[string]string{
		"pipeline": versioning.QueuePipeline,
		"batch":    versioning.QueueBatch,
	}
	known := DefaultConfigs()

	seen := make(map[string]bool)
	var result []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if full, ok := shortNames[name]; ok {
			name = full
		}
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown queue %q", name)
		}
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	if len(result) == 0 {
		return []string{versioning.QueuePipeline}, nil
	}
	return result, nil
}
