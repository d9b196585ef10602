// Package main is the entrypoint for the Notification Worker Lambda function.
//
// The Notification Worker consumes messages from the notification SQS queue.
// Each message names a generated report; the worker resolves the process
// definition and entitled recipients from Postgres, fetches the raw report
// JSON from S3, renders an HTML email body, uploads the composed email to
// the sender bucket, and publishes a pointer message to the sender queue.
//
// Cold start (main):
//  1. Initialize structured logger.
//  2. Load and validate configuration from the environment.
//  3. Load AWS SDK configuration (with endpoint override for local dev).
//  4. Initialize S3, SQS, and CloudWatch clients.
//  5. Initialize the database pool.
//  6. Initialize the template renderer (degrades to a disabled renderer on
//     failure; emails are then handed off with a null body).
//  7. Register the handler and call lambda.Start.
//
// Per message, a database connection is acquired from the pool and released
// when the dispatch finishes, so each message runs as its own read-only unit
// of work.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"reportnotifier/internal/config"
	"reportnotifier/internal/db"
	"reportnotifier/internal/notifications"
	"reportnotifier/internal/queue"
	"reportnotifier/internal/storage"
	"reportnotifier/internal/types"
)

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
// slog.Logger satisfies Info/Warn/Error directly, but With returns
// *slog.Logger rather than types.Logger, so an adapter is necessary.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

var _ types.Logger = (*slogAdapter)(nil)

// Handler holds the cold-start dependencies for the worker. Per-message
// state (the database connection and the repositories bound to it) is
// constructed inside processMessage.
type Handler struct {
	pool     *pgxpool.Pool
	renderer *notifications.Renderer
	store    *storage.BlobStore
	sender   *queue.SenderTrigger
	metrics  notifications.DispatchMetrics
	cfg      *config.Config
	logger   types.Logger
}

// Handle processes an SQS event containing one or more notification
// messages. Messages are processed independently; a message whose
// collaborator I/O failed is reported in batchItemFailures so SQS retries
// only that message.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		if err := h.processMessage(ctx, record); err != nil {
			h.logger.Error("failed to process SQS message",
				"message_id", record.MessageId,
				"error", err.Error(),
			)
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}

	return response, nil
}

// processMessage runs one message through the dispatch pipeline within its
// own database unit of work.
func (h *Handler) processMessage(ctx context.Context, record events.SQSMessage) error {
	// Record queue lag for observability.
	if sentTimestamp, ok := record.Attributes["SentTimestamp"]; ok {
		if sent, err := parseMillisTimestamp(sentTimestamp); err == nil {
			h.metrics.RecordQueueLag(ctx, time.Since(sent))
		}
	}

	conn, err := h.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire database connection: %w", err)
	}
	defer conn.Release()

	dispatcher := notifications.NewDispatcher(notifications.DispatcherConfig{
		Processes: notifications.NewProcessService(
			db.NewProcessRepository(conn), h.logger),
		Recipients: notifications.NewRecipientResolver(
			db.NewUserProcessRepository(conn),
			db.NewUserRepository(conn),
			h.logger),
		Renderer:     h.renderer,
		Store:        h.store,
		Sender:       h.sender,
		SenderBucket: h.cfg.AWS.SenderBucket,
		Metrics:      h.metrics,
		Logger:       h.logger.With("message_id", record.MessageId),
	})

	return dispatcher.Dispatch(ctx, []byte(record.Body))
}

// parseMillisTimestamp parses a millisecond-epoch string into a time.Time.
// Used for the SQS SentTimestamp attribute to calculate queue lag.
func parseMillisTimestamp(ms string) (time.Time, error) {
	var millis int64
	if _, err := fmt.Sscanf(ms, "%d", &millis); err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis), nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("Notification Worker Lambda initializing (cold start)")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	typedLogger := &slogAdapter{logger: logger}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWS.Region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout}),
	)
	if err != nil {
		logger.Error("Failed to load AWS SDK config", "error", err)
		os.Exit(1)
	}

	// Endpoint override enables LocalStack/MinIO in local dev; path-style
	// addressing is required for bucket endpoints that are not DNS names.
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = &cfg.AWS.EndpointURL
			o.UsePathStyle = true
		}
	})
	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = &cfg.AWS.EndpointURL
		}
	})

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL.Unmask())
	if err != nil {
		logger.Error("Failed to parse database config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.Database.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		logger.Error("Failed to create database pool", "error", err)
		os.Exit(1)
	}

	// Template initialization degrades gracefully: a nil renderer means
	// every email goes out with a null body, which the sender tolerates.
	renderer, err := notifications.NewRenderer(typedLogger)
	if err != nil {
		logger.Error("Failed to initialize template renderer, emails will have no body", "error", err)
		renderer = nil
	}

	var metrics notifications.DispatchMetrics
	if cfg.Environment == "local" {
		metrics = notifications.NoopDispatchMetrics{}
	} else {
		cwClient := cloudwatch.NewFromConfig(awsCfg)
		metrics = notifications.NewCloudWatchDispatchMetrics(cwClient, cfg.AWS.MetricNamespace, typedLogger)
	}

	handler := &Handler{
		pool:     pool,
		renderer: renderer,
		store:    storage.NewBlobStore(s3Client, typedLogger),
		sender:   queue.NewSenderTrigger(sqsClient, cfg.AWS, typedLogger),
		metrics:  metrics,
		cfg:      cfg,
		logger:   typedLogger,
	}

	logger.Info("Notification Worker Lambda initialized",
		"notification_queue", cfg.AWS.NotificationQueue,
		"sender_queue", cfg.AWS.SenderQueueURL,
		"sender_bucket", cfg.AWS.SenderBucket,
	)

	// Local mode: read a JSON SQS event from stdin instead of starting the
	// Lambda runtime. This enables local integration testing without the
	// AWS Lambda RIE.
	// Usage: echo '{"Records":[{"messageId":"1","body":"{...}"}]}' | go run cmd/notification-worker/main.go
	if cfg.Environment == "local" {
		logger.Info("APP_ENV=local: reading SQS event from stdin")
		payload, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Error("Failed to read stdin", "error", err)
			os.Exit(1)
		}
		if len(payload) == 0 {
			logger.Error("No input received on stdin")
			os.Exit(1)
		}
		var sqsEvent events.SQSEvent
		if err := json.Unmarshal(payload, &sqsEvent); err != nil {
			logger.Error("Failed to parse stdin as SQS event", "error", err)
			os.Exit(1)
		}
		response, err := handler.Handle(context.Background(), sqsEvent)
		if err != nil {
			logger.Error("Handler execution failed", "error", err)
			os.Exit(1)
		}
		if len(response.BatchItemFailures) > 0 {
			respJSON, _ := json.MarshalIndent(response, "", "  ")
			fmt.Fprintln(os.Stderr, string(respJSON))
		}
		logger.Info("Handler execution completed",
			"records_processed", len(sqsEvent.Records),
			"failures", len(response.BatchItemFailures),
		)
		return
	}

	lambda.Start(handler.Handle)
}
