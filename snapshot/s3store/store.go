// Package s3store stores registry snapshots as objects in an S3 bucket.
package s3store

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/snapshot"
)

// DefaultContentType is the content type snapshots are uploaded with.
const DefaultContentType = "application/json"

// ObjectAPI is the subset of the S3 client used by Store. *s3.Client
// satisfies it.
type ObjectAPI interface {
	// PutObject uploads an object to S3
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)

	// GetObject retrieves an object from S3
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type storeOptions struct {
	prefix      string
	contentType string
}

// Option is a functional option for configuring a Store.
type Option func(*storeOptions)

// WithPrefix places every snapshot key under prefix.
func WithPrefix(prefix string) Option {
	return func(opts *storeOptions) {
		opts.prefix = prefix
	}
}

// WithContentType overrides DefaultContentType.
func WithContentType(contentType string) Option {
	return func(opts *storeOptions) {
		opts.contentType = contentType
	}
}

// Store keeps snapshots as objects in one bucket.
type Store struct {
	api         ObjectAPI
	bucket      string
	prefix      string
	contentType string
}

// New returns a Store for bucket.
func New(api ObjectAPI, bucket string, options ...Option) *Store {
	opts := &storeOptions{contentType: DefaultContentType}
	for _, option := range options {
		option(opts)
	}
	return &Store{
		api:         api,
		bucket:      bucket,
		prefix:      opts.prefix,
		contentType: opts.contentType,
	}
}

// Put implements snapshot.Store.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(s.contentType),
	})
	if err != nil {
		return fmt.Errorf("s3.put %s/%s: %w", s.bucket, objectKey, err)
	}
	return nil
}

// Get implements snapshot.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.WrapWithContext(err, errors.CodeNotFound, "snapshot not found",
				map[string]interface{}{"bucket": s.bucket, "key": objectKey})
		}
		return nil, fmt.Errorf("s3.get %s/%s: %w", s.bucket, objectKey, err)
	}
	if out.Body == nil {
		return []byte{}, nil
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3.get %s/%s: read body: %w", s.bucket, objectKey, err)
	}
	return data, nil
}

func (s *Store) objectKey(key string) (string, error) {
	if key == "" {
		return "", errors.New(errors.CodeInvalidInput, "snapshot key cannot be empty")
	}
	if s.prefix == "" {
		return key, nil
	}
	return path.Join(s.prefix, key), nil
}

// isNotFound reports whether err is S3's answer for a missing object.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if stderrors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if stderrors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

var _ snapshot.Store = (*Store)(nil)
