//go:build integration

// Integration tests against the hosted agent endpoint.
// Run with: MIGRATE_MODE=production go test -tags=integration ./internal/agent -v
package agent_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nova-migration/migrate-go/internal/agent"
	"github.com/nova-migration/migrate-go/internal/config"
	"github.com/nova-migration/migrate-go/internal/domain"
	"github.com/nova-migration/migrate-go/internal/ratelimit"
)

func liveService(t *testing.T) *agent.Service {
	t.Helper()
	if os.Getenv("MIGRATE_AGENT_ENDPOINT") == "" {
		t.Skip("MIGRATE_AGENT_ENDPOINT not set, skipping integration test")
	}
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	return agent.NewService(agent.New(cfg.AgentConfig(), ratelimit.NewAgentLimiter(cfg.AgentRPS, 1)), cfg.Agents)
}

func TestIntegration_GenerateAndMigrate(t *testing.T) {
	svc := liveService(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	in := domain.MigrationInput{
		Provider:       "openai",
		Model:          "gpt-4o",
		OriginalPrompt: "You are a concise assistant. Answer in one sentence.",
	}

	cases, err := svc.GenerateTestCases(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, cases, "generator must return at least one case")

	prompt, err := svc.MigratePrompt(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, prompt)

	out, err := svc.ExecuteTest(ctx, prompt, cases[0])
	require.NoError(t, err)
	require.NotEmpty(t, out)
}
