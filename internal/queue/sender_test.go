package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportnotifier/internal/config"
	"reportnotifier/internal/types"
)

// --- Mock SQS Client ---

// mockSQSSender captures SendMessage calls for test assertions.
type mockSQSSender struct {
	calls []*sqs.SendMessageInput
	err   error
}

func (m *mockSQSSender) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.calls = append(m.calls, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sqs.SendMessageOutput{}, nil
}

// testLogger is a no-op types.Logger for tests.
type testLogger struct{}

func (testLogger) Info(string, ...any)        {}
func (testLogger) Warn(string, ...any)        {}
func (testLogger) Error(string, ...any)       {}
func (l testLogger) With(...any) types.Logger { return l }

const testSenderURL = "https://sqs.us-east-1.amazonaws.com/123456789/email-sender"

func newTestTrigger(mock *mockSQSSender) *SenderTrigger {
	awsCfg := config.AWSConfig{SenderQueueURL: testSenderURL}
	return NewSenderTrigger(mock, awsCfg, testLogger{})
}

// --- Tests ---

func TestSenderTrigger_Publish_SendsHandoffMessage(t *testing.T) {
	mock := &mockSQSSender{}
	trigger := newTestTrigger(mock)

	err := trigger.Publish(context.Background(), "r1.json", "trace-123")
	require.NoError(t, err)
	require.Len(t, mock.calls, 1)

	call := mock.calls[0]
	assert.Equal(t, testSenderURL, *call.QueueUrl)

	var msg types.HandoffMessage
	require.NoError(t, json.Unmarshal([]byte(*call.MessageBody), &msg))
	assert.Equal(t, "r1.json", msg.BlobName)
}

func TestSenderTrigger_Publish_CarriesTraceAttribute(t *testing.T) {
	mock := &mockSQSSender{}
	trigger := newTestTrigger(mock)

	require.NoError(t, trigger.Publish(context.Background(), "r1.json", "trace-abc"))

	attrs := mock.calls[0].MessageAttributes
	require.Contains(t, attrs, "trace_id")
	assert.Equal(t, "trace-abc", *attrs["trace_id"].StringValue)
	assert.Equal(t, "String", *attrs["trace_id"].DataType)
}

func TestSenderTrigger_Publish_BodyIsExactContract(t *testing.T) {
	mock := &mockSQSSender{}
	trigger := newTestTrigger(mock)

	require.NoError(t, trigger.Publish(context.Background(), "report-7.json", "t"))
	assert.JSONEq(t, `{"blob_name":"report-7.json"}`, *mock.calls[0].MessageBody)
}

func TestSenderTrigger_Publish_SQSErrorPropagates(t *testing.T) {
	mock := &mockSQSSender{err: errors.New("throttled")}
	trigger := newTestTrigger(mock)

	err := trigger.Publish(context.Background(), "r1.json", "trace-123")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamQueue, appErr.Code)
}
