package storage

import (
	"bytes"
	"context"
	"ecuestre_go/config"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectStore keeps uploaded files (payment vouchers, log archives).
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Store creates an S3 backed store from the application config.
// Static keys are used when configured, otherwise the default AWS chain.
func NewS3Store(ctx context.Context) (*S3Store, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(config.AppConfig.AWSRegion)}
	if config.AppConfig.AWSAccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.AppConfig.AWSAccessKeyID,
			config.AppConfig.AWSSecretAccessKey,
			"",
		)))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: config.AppConfig.S3BucketName,
		region: config.AppConfig.AWSRegion,
	}, nil
}

// Put uploads body under key and returns its public URL
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// Delete removes the object behind a URL returned by Put
func (s *S3Store) Delete(ctx context.Context, url string) error {
	key := KeyFromURL(url)
	if key == "" {
		return fmt.Errorf("invalid file URL")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// VoucherKey builds comprobantes/<alumno>/<yyyy>/<mm>/<uuid>.<ext>
func VoucherKey(alumnoID uint, filename string, now time.Time) string {
	return fmt.Sprintf("comprobantes/%d/%d/%02d/%s.%s",
		alumnoID,
		now.Year(),
		now.Month(),
		uuid.NewString(),
		Extension(filename),
	)
}

// Extension returns the lowercase extension without the dot
func Extension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 1 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// ContentType returns the MIME type for the file extension
func ContentType(extension string) string {
	switch strings.ToLower(extension) {
	case "webp":
		return "image/webp"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "pdf":
		return "application/pdf"
	case "zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// KeyFromURL extracts the S3 key from a full URL
func KeyFromURL(url string) string {
	// https://bucket.s3.region.amazonaws.com/path/to/file.ext
	parts := strings.Split(url, ".amazonaws.com/")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
