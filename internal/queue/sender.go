// Package queue provides the SQS-based producer that hands composed email
// artifacts off to the downstream sender service.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"reportnotifier/internal/config"
	"reportnotifier/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SenderTrigger publishes HandoffMessage pointers to the sender queue after
// the corresponding EmailMessage blob has been uploaded. The message body
// carries only the blob key; the sender fetches the artifact itself.
type SenderTrigger struct {
	client   SQSSender
	queueURL string
	logger   types.Logger
}

// NewSenderTrigger creates a SenderTrigger with the given SQS client and
// configuration. It reads the sender queue URL from the AWSConfig.
func NewSenderTrigger(client SQSSender, awsCfg config.AWSConfig, logger types.Logger) *SenderTrigger {
	return &SenderTrigger{
		client:   client,
		queueURL: awsCfg.SenderQueueURL,
		logger:   logger,
	}
}

// Publish serializes a HandoffMessage for the given blob and sends it to the
// sender queue. The trace id rides along as a message attribute so the
// sender's logs can be correlated with this dispatch.
//
// Errors are not retried here: a failed publish fails the current dispatch
// and the hosting runtime redelivers the whole inbound message. The blob key
// is deterministic, so redelivery overwrites the same artifact and
// re-publishes the same pointer.
func (t *SenderTrigger) Publish(ctx context.Context, blobName string, traceID string) error {
	msg := types.HandoffMessage{BlobName: blobName}

	body, err := json.Marshal(msg)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamQueue,
			"failed to marshal handoff message", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(t.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"trace_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(traceID),
			},
		},
	}

	if _, err := t.client.SendMessage(ctx, input); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamQueue,
			fmt.Sprintf("failed to publish handoff for blob %s", blobName), err)
	}

	t.logger.Info("handoff message published",
		"blob_name", blobName,
		"trace_id", traceID,
	)
	return nil
}
