// Command mcp-migrate runs the MCP tool server for prompt migration runs.
// Uses stdio transport for integration with AI assistants, so logs go to stderr.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.temporal.io/sdk/client"

	"github.com/nova-migration/migrate-go/internal/config"
	"github.com/nova-migration/migrate-go/internal/mcpserver"
	"github.com/nova-migration/migrate-go/internal/observability"
	"github.com/nova-migration/migrate-go/internal/temporal/querier"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	logger := observability.InitStderrLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.Dial(client.Options{
		Logger: observability.NewTemporalSlogAdapter(logger),
	})
	if err != nil {
		logger.Error("unable to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "nova-migration",
		Version: "v1.0.0",
	}, nil)
	mcpserver.RegisterTools(server, querier.New(c))

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
