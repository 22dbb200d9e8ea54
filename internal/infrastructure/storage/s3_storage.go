// Package storage provides object storage implementations for archived labels.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	infraconfig "github.com/etiqueta/backend/internal/infrastructure/config"
	"github.com/etiqueta/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// Ensure S3LabelArchive implements LabelArchive
var _ printing.LabelArchive = (*S3LabelArchive)(nil)

// S3LabelArchive stores generated labels in an S3-compatible bucket
// (AWS S3, MinIO, RustFS, etc.)
type S3LabelArchive struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// S3LabelArchiveOption is a functional option for configuring S3LabelArchive
type S3LabelArchiveOption func(*S3LabelArchive)

// WithLogger sets a custom logger for S3LabelArchive
func WithLogger(logger *zap.Logger) S3LabelArchiveOption {
	return func(s *S3LabelArchive) {
		s.logger = logger
	}
}

// NewS3LabelArchive creates a new S3LabelArchive from configuration
func NewS3LabelArchive(cfg *infraconfig.ArchiveConfig, opts ...S3LabelArchiveOption) (*S3LabelArchive, error) {
	if cfg == nil {
		return nil, errors.New("archive configuration is required")
	}

	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("archive access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("archive secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid archive endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	archive := &S3LabelArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}

	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3LabelArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating archive bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Lost a creation race
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Key returns the object key for a request: {prefix}/{yyyy}/{mm}/{id}.pdf
func (s *S3LabelArchive) Key(req *printing.ArchiveRequest) string {
	if s.prefix == "" {
		return req.RelativePath()
	}
	return path.Join(s.prefix, req.RelativePath())
}

// Store uploads the PDF to the bucket
func (s *S3LabelArchive) Store(ctx context.Context, req *printing.ArchiveRequest) (*printing.ArchiveResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := s.Key(req)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(req.PDFData),
		ContentLength: aws.Int64(int64(len(req.PDFData))),
		ContentType:   aws.String("application/pdf"),
	}
	if req.BarcodeText != "" {
		input.Metadata = map[string]string{"barcode": url.QueryEscape(req.BarcodeText)}
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to upload label", err)
	}

	s.logger.Info("label archived",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(req.PDFData)))

	return &printing.ArchiveResult{
		Path: key,
		Size: int64(len(req.PDFData)),
	}, nil
}

// GetBucket returns the bucket name
func (s *S3LabelArchive) GetBucket() string {
	return s.bucket
}
