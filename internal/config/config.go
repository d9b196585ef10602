// Package config defines the environment-sourced configuration for the
// notification dispatcher. Configuration is loaded once at process
// initialization (Lambda cold start) and is immutable thereafter. It follows
// 12-Factor principles by strictly separating code from configuration: any
// missing required value or invalid format fails the process immediately.
package config

import (
	"time"

	"reportnotifier/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used for sensitive configuration values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the dispatcher. It is
// populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Database DatabaseConfig
	AWS      AWSConfig
	Client   ClientConfig
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
//
// NotificationQueue is the inbound trigger queue. The Lambda event source
// mapping owns the actual binding; the worker only records the name for
// logging and for the local stdin mode.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	NotificationQueue string `envconfig:"NOTIFICATION_QUEUE" default:"notification-queue"`
	SenderQueueURL    string `envconfig:"SQS_SENDER" validate:"required,url"`
	SenderBucket      string `envconfig:"SENDER_BUCKET" validate:"required"`
	MetricNamespace   string `envconfig:"METRIC_NAMESPACE" default:"ReportNotifier"`

	// LocalStack/MinIO support (empty in prod).
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// ClientConfig holds tuning for outbound storage/queue clients. The timeout
// is applied to the AWS SDK HTTP client; core dispatch logic does not manage
// timeouts of its own.
type ClientConfig struct {
	Timeout time.Duration `envconfig:"API_CLIENT_TIMEOUT" default:"90s"`
}
