// Package mirror uploads finished render artifacts to S3 so they stay
// reachable after the local retention sweep removes them.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignLifetime = 24 * time.Hour

type S3Mirror struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	prefix        string
	logger        *slog.Logger
}

func NewS3Mirror(ctx context.Context, bucket, prefix, region string, logger *slog.Logger) (*S3Mirror, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	return &S3Mirror{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        bucket,
		prefix:        prefix,
		logger:        logger,
	}, nil
}

// Upload copies a local artifact to the bucket and returns a presigned
// URL for it.
func (m *S3Mirror) Upload(ctx context.Context, key, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	fullKey := m.prefix + key
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(fullKey),
		Body:        f,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object to S3: %w", err)
	}

	req, err := m.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(fullKey),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignLifetime
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	if m.logger != nil {
		m.logger.Info("artifact mirrored", "bucket", m.bucket, "key", fullKey)
	}
	return req.URL, nil
}
