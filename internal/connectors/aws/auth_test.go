package aws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRoleARN(t *testing.T) {
	t.Parallel()
	tests := []struct {
		arn     string
		wantErr bool
	}{
		{"arn:aws:iam::123456789012:role/MigrateMetrics", false},
		{"arn:aws:iam::123456789012:role/path/MigrateMetrics", false},
		{"arn:aws:iam::12345:role/Short", true},           // too few digits
		{"arn:aws:iam::123456789012:user/NotARole", true}, // user, not role
		{"", true},
		{"not-an-arn", true},
	}

	for _, tt := range tests {
		t.Run(tt.arn, func(t *testing.T) {
			t.Parallel()
			err := ValidateRoleARN(tt.arn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewAWSConfig_RejectsBadRole(t *testing.T) {
	_, err := NewAWSConfig(context.Background(), "us-east-1", "", "arn:aws:iam::1:user/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid IAM role ARN")
}

func TestNewAWSConfig_Region(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")

	cfg, err := NewAWSConfig(context.Background(), "eu-west-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
}

func TestNewAWSConfig_AssumesRole(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")

	cfg, err := NewAWSConfig(context.Background(), "us-east-1", "", "arn:aws:iam::123456789012:role/MigrateMetrics")
	require.NoError(t, err)
	assert.NotNil(t, cfg.Credentials)
}
