// Command migrate starts and inspects prompt migration runs from the shell.
//
// Usage:
//
//	migrate run --provider openai --model gpt-4o --prompt-file prompt.txt [--wait]
//	migrate status <workflow-id> [--json]
//	migrate list [--status Running]
//	migrate restart <workflow-id>
//	migrate diff <workflow-id>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.temporal.io/sdk/client"

	"github.com/nova-migration/migrate-go/internal/config"
	"github.com/nova-migration/migrate-go/internal/observability"
	"github.com/nova-migration/migrate-go/internal/temporal/querier"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(dialTemporal).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// dialTemporal connects with the same logger settings as the other binaries.
func dialTemporal() (querier.WorkflowQuerier, func(), error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, err
	}
	logger := observability.InitStderrLogger(cfg.LogLevel)
	c, err := client.Dial(client.Options{
		Logger: observability.NewTemporalSlogAdapter(logger),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create Temporal client: %w", err)
	}
	return querier.New(c), c.Close, nil
}
