package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Backend.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Backend stores each key as one object in an S3 bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	backend := storage.NewS3Backend(s3.NewFromConfig(cfg), "my-bucket", "carts/")
type S3Backend struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Backend creates a backend writing objects under prefix in bucket.
func NewS3Backend(client S3API, bucket, prefix string) *S3Backend {
	return &S3Backend{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (b *S3Backend) objectKey(key string) string {
	return b.prefix + key + ".json"
}

// GetItem downloads the object for key.
func (b *S3Backend) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("storage: s3 get %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("storage: s3 read %q: %w", key, err)
	}
	return data, true, nil
}

// SetItem uploads value as the object for key.
func (b *S3Backend) SetItem(ctx context.Context, key string, value []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 put %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes the object for key.
func (b *S3Backend) RemoveItem(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 delete %q: %w", key, err)
	}
	return nil
}
