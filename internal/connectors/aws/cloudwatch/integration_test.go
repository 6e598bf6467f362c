//go:build integration

// Run with: go test -tags=integration ./internal/connectors/aws/cloudwatch -v
package cloudwatch_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	awsauth "github.com/nova-migration/migrate-go/internal/connectors/aws"
	"github.com/nova-migration/migrate-go/internal/connectors/aws/cloudwatch"
	"github.com/nova-migration/migrate-go/internal/domain"
)

func TestIntegration_PublishRun(t *testing.T) {
	if os.Getenv("AWS_REGION") == "" {
		t.Skip("AWS_REGION not set, skipping integration test")
	}

	cfg, err := awsauth.NewAWSConfig(context.Background(), os.Getenv("AWS_REGION"), os.Getenv("AWS_PROFILE"), os.Getenv("MIGRATE_METRICS_ROLE_ARN"))
	require.NoError(t, err)

	client := cloudwatch.New(cfg, "NovaMigrationIntegration")
	err = client.PublishRun(context.Background(), domain.RunSummary{
		RunID:           "integration",
		Provider:        "openai",
		Model:           "gpt-4o",
		Outcome:         "completed",
		DurationSeconds: 1,
	})
	require.NoError(t, err)
}
