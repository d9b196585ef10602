// Package storage provides the S3-backed blob store used to fetch raw report
// JSON and to upload composed email artifacts for the downstream sender.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"reportnotifier/internal/types"
)

// S3Client abstracts the S3 operations the blob store needs, for
// testability. Production code uses *s3.Client from aws-sdk-go-v2.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BlobStore reads and writes JSON blobs in S3 buckets. Report buckets are
// named per process (the process table's container column); the sender
// bucket is fixed by configuration.
type BlobStore struct {
	client S3Client
	logger types.Logger
}

// NewBlobStore creates a BlobStore backed by the given S3 client.
func NewBlobStore(client S3Client, logger types.Logger) *BlobStore {
	return &BlobStore{client: client, logger: logger}
}

// FetchJSON downloads a blob and returns its raw JSON bytes.
//
// A missing blob or bucket returns (nil, nil): an absent report is a valid
// dispatch input that flows through to the renderer as "no table". Any other
// storage failure returns an error, which the caller propagates to the
// hosting runtime for redelivery.
func (s *BlobStore) FetchJSON(ctx context.Context, bucket, key string) (json.RawMessage, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		var noBucket *s3types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			s.logger.Warn("report blob not found",
				"bucket", bucket,
				"key", key,
			)
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeUpstreamStorage,
			fmt.Sprintf("failed to download blob %s/%s", bucket, key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamStorage,
			fmt.Sprintf("failed to read blob body %s/%s", bucket, key), err)
	}

	return json.RawMessage(data), nil
}

// Upload writes a blob with the given content type. Failures propagate to
// the caller; the handoff contract has no local retry.
func (s *BlobStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamStorage,
			fmt.Sprintf("failed to upload blob %s/%s", bucket, key), err)
	}
	return nil
}
