package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Configuration carries the settings for the S3 driver.
type S3Configuration struct {
	Bucket    string
	Region    string
	AccessID  string
	AccessKey string
	KeyPrefix string
}

// S3Store is the AWS S3 implementation of Store.
type S3Store struct {
	client    *s3.Client
	bucket    string
	region    string
	keyPrefix string
}

// NewS3Store builds an S3-backed store from static credentials.
func NewS3Store(ctx context.Context, cfg S3Configuration) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("media: bucket must not be empty")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessID, cfg.AccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}

	return &S3Store{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// Upload writes the object and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	fullKey := s.keyPrefix + key
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("media: put object %s: %w", fullKey, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, fullKey), nil
}

// Delete removes the object.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	fullKey := s.keyPrefix + key
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("media: delete object %s: %w", fullKey, err)
	}
	return nil
}
