package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/infrastructure/config"
)

// objectAPI is the subset of the S3 client used by the archiver
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Archiver writes payloads as JSON objects to any S3-compatible store
type S3Archiver struct {
	client objectAPI
	bucket string
	prefix string
	logger *zap.Logger
}

// S3ArchiverOption is a functional option for configuring S3Archiver
type S3ArchiverOption func(*S3Archiver)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ArchiverOption {
	return func(s *S3Archiver) {
		s.logger = logger
	}
}

// NewS3Archiver creates an archiver from configuration.
// Static credentials are used when given; otherwise the default AWS chain applies.
func NewS3Archiver(cfg *config.StorageConfig, opts ...S3ArchiverOption) (*S3Archiver, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key id and secret access key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newS3Archiver(client, cfg.Bucket, cfg.Prefix, opts...), nil
}

func newS3Archiver(client objectAPI, bucket, prefix string, opts ...S3ArchiverOption) *S3Archiver {
	if prefix == "" {
		prefix = "raw"
	}
	a := &S3Archiver{client: client, bucket: bucket, prefix: prefix, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Bucket returns the target bucket
func (s *S3Archiver) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3Archiver) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating archive bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive writes the payload as JSON and returns its key
func (s *S3Archiver) Archive(ctx context.Context, a Archive) (string, error) {
	if a.Platform == "" || a.Job == "" {
		return "", errors.New("archive platform and job are required")
	}
	body, err := json.Marshal(a.Payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	key := a.Key(s.prefix)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
		Metadata: map[string]string{
			"platform": a.Platform,
			"creator":  a.CreatorID,
			"job":      a.Job,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", key, err)
	}
	s.logger.Debug("archived raw payload", zap.String("key", key), zap.Int("bytes", len(body)))
	return key, nil
}

var _ Archiver = (*S3Archiver)(nil)

// New returns an S3 archiver when storage is enabled, NopArchiver otherwise
func New(cfg *config.StorageConfig, opts ...S3ArchiverOption) (Archiver, error) {
	if cfg == nil || !cfg.Enabled {
		return NopArchiver{}, nil
	}
	return NewS3Archiver(cfg, opts...)
}
