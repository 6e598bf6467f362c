// Package cloudwatch publishes migration run metrics to AWS CloudWatch.
package cloudwatch

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/nova-migration/migrate-go/internal/domain"
)

// DefaultNamespace is used when no namespace is configured.
const DefaultNamespace = "NovaMigration"

// API is the subset of the CloudWatch client used by this package.
type API interface {
	PutMetricData(ctx context.Context, params *cw.PutMetricDataInput, optFns ...func(*cw.Options)) (*cw.PutMetricDataOutput, error)
}

// Client wraps the CloudWatch API.
type Client struct {
	api       API
	namespace string
	now       func() time.Time
}

// New creates a CloudWatch client from an AWS config.
func New(cfg aws.Config, namespace string) *Client {
	return NewFromAPI(cw.NewFromConfig(cfg), namespace)
}

// NewFromAPI creates a Client from an explicit API implementation (for testing).
func NewFromAPI(api API, namespace string) *Client {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Client{api: api, namespace: namespace, now: time.Now}
}

// PublishRun writes one datum per run figure, dimensioned by source
// provider and outcome.
func (c *Client) PublishRun(ctx context.Context, sum domain.RunSummary) error {
	dims := []cwtypes.Dimension{
		{Name: aws.String("Provider"), Value: aws.String(orUnknown(sum.Provider))},
		{Name: aws.String("Outcome"), Value: aws.String(orUnknown(sum.Outcome))},
	}
	ts := aws.Time(c.now().UTC())

	datum := func(name string, v float64, unit cwtypes.StandardUnit) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Dimensions: dims,
			Timestamp:  ts,
			Value:      aws.Float64(v),
			Unit:       unit,
		}
	}

	_, err := c.api.PutMetricData(ctx, &cw.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []cwtypes.MetricDatum{
			datum("Runs", 1, cwtypes.StandardUnitCount),
			datum("RunDuration", sum.DurationSeconds, cwtypes.StandardUnitSeconds),
			datum("TestCases", float64(sum.TestCases), cwtypes.StandardUnitCount),
			datum("TestsFailed", float64(sum.TestsFailed), cwtypes.StandardUnitCount),
			datum("PerformanceGaps", float64(sum.Gaps), cwtypes.StandardUnitCount),
			datum("HighSeverityGaps", float64(sum.HighSeverityGaps), cwtypes.StandardUnitCount),
			datum("ChangesApplied", float64(sum.ChangesApplied), cwtypes.StandardUnitCount),
		},
	})
	if err != nil {
		return fmt.Errorf("cloudwatch: put metric data: %w", err)
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
