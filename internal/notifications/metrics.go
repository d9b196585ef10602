package notifications

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"reportnotifier/internal/types"
)

// MetricResult categorizes the outcome of one dispatch for metrics.
type MetricResult string

const (
	// MetricDispatched means the composed email was handed off downstream.
	MetricDispatched MetricResult = "dispatched"
	// MetricRejected means the message was dropped before handoff
	// (missing fields or unknown process).
	MetricRejected MetricResult = "rejected"
)

// Metric and dimension names emitted to CloudWatch.
const (
	metricDispatchAttempt = "DispatchAttempt"
	metricDispatchLatency = "DispatchLatency"
	metricQueueLag        = "QueueLag"
	dimResult             = "Result"
)

// DispatchMetrics records dispatch telemetry. Implementations must tolerate
// backend failures: a metric that cannot be recorded is logged and dropped,
// never surfaced to the dispatch path.
type DispatchMetrics interface {
	// RecordDispatch counts one dispatch outcome.
	RecordDispatch(ctx context.Context, result MetricResult)
	// RecordLatency records the wall time of one dispatch.
	RecordLatency(ctx context.Context, duration time.Duration)
	// RecordQueueLag records the time between message enqueue and
	// processing start.
	RecordQueueLag(ctx context.Context, lag time.Duration)
}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchDispatchMetrics implements DispatchMetrics by emitting metrics
// to AWS CloudWatch.
type CloudWatchDispatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

var _ DispatchMetrics = (*CloudWatchDispatchMetrics)(nil)

// NewCloudWatchDispatchMetrics creates a CloudWatchDispatchMetrics that
// publishes to the given namespace.
func NewCloudWatchDispatchMetrics(client CloudWatchClient, namespace string, logger types.Logger) *CloudWatchDispatchMetrics {
	return &CloudWatchDispatchMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordDispatch emits a DispatchAttempt metric with the Result dimension.
func (m *CloudWatchDispatchMetrics) RecordDispatch(ctx context.Context, result MetricResult) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(metricDispatchAttempt),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			{
				Name:  aws.String(dimResult),
				Value: aws.String(string(result)),
			},
		},
	})
}

// RecordLatency emits the dispatch wall time in milliseconds.
func (m *CloudWatchDispatchMetrics) RecordLatency(ctx context.Context, duration time.Duration) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(metricDispatchLatency),
		Value:      aws.Float64(float64(duration.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
	})
}

// RecordQueueLag emits the enqueue-to-processing delay in milliseconds.
func (m *CloudWatchDispatchMetrics) RecordQueueLag(ctx context.Context, lag time.Duration) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(metricQueueLag),
		Value:      aws.Float64(float64(lag.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
	})
}

func (m *CloudWatchDispatchMetrics) put(ctx context.Context, datum cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record dispatch metric",
			"metric", aws.ToString(datum.MetricName),
			"error", err.Error(),
		)
	}
}

// NoopDispatchMetrics discards all metrics. Used in tests and in the local
// stdin mode where no CloudWatch backend exists.
type NoopDispatchMetrics struct{}

var _ DispatchMetrics = NoopDispatchMetrics{}

func (NoopDispatchMetrics) RecordDispatch(context.Context, MetricResult) {}
func (NoopDispatchMetrics) RecordLatency(context.Context, time.Duration) {}
func (NoopDispatchMetrics) RecordQueueLag(context.Context, time.Duration) {}
