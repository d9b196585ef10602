// Package notifications implements the core dispatch pipeline: resolving a
// process definition and its entitled recipients, rendering a report into an
// HTML email body, and composing the handoff artifacts for the downstream
// sender.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"reportnotifier/internal/types"
)

// ReportStore abstracts the blob store used to fetch raw reports and upload
// composed email artifacts.
type ReportStore interface {
	// FetchJSON returns the blob's raw JSON, or (nil, nil) when the blob
	// is absent.
	FetchJSON(ctx context.Context, bucket, key string) (json.RawMessage, error)
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// HandoffPublisher abstracts the sender queue producer.
type HandoffPublisher interface {
	Publish(ctx context.Context, blobName string, traceID string) error
}

// ProcessLookup abstracts the process name resolution service.
type ProcessLookup interface {
	GetByName(ctx context.Context, name string) *types.Process
}

// RecipientLookup abstracts the recipient resolution service.
type RecipientLookup interface {
	EmailsForProcess(ctx context.Context, processID int, institutionID int) []string
}

// Dispatcher drives one inbound message through the full pipeline. It holds
// only read-only state after construction and is safe to reuse across
// messages within a single-threaded worker invocation.
//
// Failure policy: local data failures (missing fields, unknown process,
// unreadable report, render errors) degrade or stop the dispatch without
// surfacing an error — the message is considered handled. Collaborator I/O
// failures (blob fetch/upload, queue publish) return an error so the hosting
// runtime can redeliver the message. The asymmetry is deliberate: prefer a
// degraded notification over none, but never silently drop a handoff.
type Dispatcher struct {
	processes    ProcessLookup
	recipients   RecipientLookup
	renderer     *Renderer
	store        ReportStore
	sender       HandoffPublisher
	senderBucket string
	metrics      DispatchMetrics
	validate     *validator.Validate
	logger       types.Logger
}

// DispatcherConfig holds the dependencies for constructing a Dispatcher.
// Renderer may be nil when template initialization failed at startup; the
// dispatcher then sends emails with a null body instead of aborting.
type DispatcherConfig struct {
	Processes    ProcessLookup
	Recipients   RecipientLookup
	Renderer     *Renderer
	Store        ReportStore
	Sender       HandoffPublisher
	SenderBucket string
	Metrics      DispatchMetrics
	Logger       types.Logger
}

// NewDispatcher creates a Dispatcher from the given dependencies.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NoopDispatchMetrics{}
	}
	return &Dispatcher{
		processes:    cfg.Processes,
		recipients:   cfg.Recipients,
		renderer:     cfg.Renderer,
		store:        cfg.Store,
		sender:       cfg.Sender,
		senderBucket: cfg.SenderBucket,
		metrics:      metrics,
		validate:     validator.New(),
		logger:       cfg.Logger,
	}
}

// Dispatch processes one inbound message body.
//
// A nil return means the message is handled, including every validation and
// lookup failure: redelivering those can never succeed, so they are logged
// and acknowledged. A non-nil return means a collaborator call failed and
// the message should be redelivered.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) error {
	start := time.Now()

	var msg types.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		d.logger.Error("failed to parse notification message",
			"error", err.Error(),
		)
		d.metrics.RecordDispatch(ctx, MetricRejected)
		return nil
	}

	if err := d.validate.Struct(msg); err != nil {
		d.logger.Error("notification message missing required fields",
			"report_id", msg.ReportID,
			"institution_id", msg.InstitutionID,
			"process_type", msg.ProcessType,
		)
		d.metrics.RecordDispatch(ctx, MetricRejected)
		return nil
	}

	traceID := uuid.New().String()
	logger := d.logger.With(
		"report_id", msg.ReportID,
		"institution_id", msg.InstitutionID,
		"process_type", msg.ProcessType,
		"trace_id", traceID,
	)

	process := d.processes.GetByName(ctx, msg.ProcessType)
	if process == nil {
		// ProcessService already logged the cause.
		d.metrics.RecordDispatch(ctx, MetricRejected)
		return nil
	}

	blobName := msg.ReportID + ".json"

	report, err := d.store.FetchJSON(ctx, process.Container, blobName)
	if err != nil {
		return err
	}

	emails := d.recipients.EmailsForProcess(ctx, process.ID, msg.InstitutionID)

	table, ok := BuildTable(report)
	if !ok {
		logger.Warn("no report data available for table conversion")
	}

	html := d.renderBody(process, table, logger)

	email := types.EmailMessage{
		To:      emails,
		Subject: process.EmailSubject,
		HTML:    html,
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamStorage,
			"failed to serialize email artifact", err)
	}

	if err := d.store.Upload(ctx, d.senderBucket, blobName, payload, "application/json"); err != nil {
		return err
	}

	if err := d.sender.Publish(ctx, blobName, traceID); err != nil {
		return err
	}

	d.metrics.RecordDispatch(ctx, MetricDispatched)
	d.metrics.RecordLatency(ctx, time.Since(start))

	logger.Info("notification dispatched",
		"recipients", len(emails),
		"blob_name", blobName,
	)
	return nil
}

// renderBody renders the email body, degrading to nil on any failure so the
// email is still handed off with an explicit null body.
func (d *Dispatcher) renderBody(process *types.Process, tableHTML string, logger types.Logger) *string {
	if d.renderer == nil {
		logger.Error("cannot render email body, renderer unavailable")
		return nil
	}

	body, err := d.renderer.Render(DefaultTemplate, process, tableHTML)
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) && appErr.Code == types.ErrCodeTemplateNotFound {
			logger.Error("template not found", "template", DefaultTemplate)
		} else {
			logger.Error("error rendering template",
				"template", DefaultTemplate,
				"error", err.Error(),
			)
		}
		return nil
	}
	return &body
}
