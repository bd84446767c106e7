// Package media stores post cover images in an S3-compatible bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/isdelr/inkpost-be/internal/config"
)

// ErrUploadFailed wraps every transport or service error returned by Upload.
var ErrUploadFailed = errors.New("upload failed")

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// Object identifies a stored media object.
type Object struct {
	ID  string // storage identity, used for deletion
	URL string // public locator
}

// S3Store uploads and deletes objects in a single bucket under a fixed prefix.
type S3Store struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Store creates a client for the configured bucket. The SDK retryer is
// disabled: a failed media call fails the surrounding request.
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		o.Retryer = aws.NopRetryer{}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

func (s *S3Store) key(id string) string {
	if s.prefix == "" {
		return id
	}
	return s.prefix + "/" + id
}

// Upload stores body under a fresh id and returns its locator.
func (s *S3Store) Upload(ctx context.Context, body io.ReadSeeker, contentType string) (Object, error) {
	id := uuid.New().String()
	key := s.key(id)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Object{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return Object{ID: id, URL: s.publicURL + "/" + key}, nil
}

// Delete removes the object with the given id.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("empty media id")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}
