package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/edvin/clustertemplates/internal/config"
	"github.com/edvin/clustertemplates/internal/model"
	"github.com/edvin/clustertemplates/internal/platform"
)

const templateContentType = "application/x-yaml"

// ErrArtifactExists is returned when an object with the requested key is
// already present. Artifacts are immutable, so the write is rejected.
var ErrArtifactExists = errors.New("artifact already exists")

// PutObjectAPI is the subset of *s3.Client the store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes rendered templates to a single public bucket.
type S3Store struct {
	client     PutObjectAPI
	bucket     string
	publicHost string
	logger     zerolog.Logger
}

func NewS3Store(logger zerolog.Logger, client PutObjectAPI, bucket, publicHost string) *S3Store {
	return &S3Store{
		client:     client,
		bucket:     bucket,
		publicHost: publicHost,
		logger:     logger.With().Str("component", "s3-store").Str("bucket", bucket).Logger(),
	}
}

// NewS3Client builds an S3 client from the config. Static credentials are
// used when both keys are set, otherwise the default AWS credential chain.
// A custom endpoint switches the client to path-style addressing.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Put uploads body under key with a public-read ACL. The write is
// conditional on the key not existing yet.
func (s *S3Store) Put(ctx context.Context, key string, body []byte) (*model.Artifact, error) {
	s.logger.Debug().Str("key", key).Int("size", len(body)).Msg("uploading template")

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(templateContentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		if isConflict(err) {
			return nil, fmt.Errorf("put object %s: %w", key, ErrArtifactExists)
		}
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &model.Artifact{
		Key:  key,
		URL:  platform.ObjectURL(s.publicHost, s.bucket, key),
		Size: len(body),
	}, nil
}

// isConflict reports whether err is S3 refusing a conditional write.
func isConflict(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
