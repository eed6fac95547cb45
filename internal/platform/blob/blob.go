// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package blob stores uploaded file content in S3-compatible object storage.
package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store is the object-storage surface the document service depends on.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error

	// URL returns the public address of a stored object.
	URL(key string) string
}

// S3Store stores objects in one S3 bucket.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// Options configures the S3 connection. Endpoint is only set for
// S3-compatible stores (MinIO in development); empty means AWS.
type Options struct {
	Bucket   string
	Region   string
	Endpoint string
	BaseURL  string
}

// NewS3Store builds an S3-backed store from the ambient AWS credential chain.
func NewS3Store(ctx context.Context, opts Options) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("blob: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			// MinIO and friends do not support virtual-hosted buckets.
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}, nil
}

func (store *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(store.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("blob: failed to store %q: %w", key, err)
	}
	return nil
}

func (store *S3Store) Delete(ctx context.Context, key string) error {
	_, err := store.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("blob: failed to delete %q: %w", key, err)
	}
	return nil
}

func (store *S3Store) URL(key string) string {
	return store.baseURL + "/" + key
}
