package s3infra

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/campus-market-api/internal/config"
)

// Store wraps S3 operations for the application.
type Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(cfg *config.Config) *s3.Client {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		panic("failed to load AWS config for S3: " + err.Error())
	}

	clientOpts := []func(*s3.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsCfg, clientOpts...)
}

// NewStore creates a Store with the given S3 client and bucket name.
func NewStore(client *s3.Client, cfg *config.Config) *Store {
	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3BucketName, cfg.AWSRegion)
	if cfg.AWSEndpointURL != "" {
		publicURL = fmt.Sprintf("%s/%s", cfg.AWSEndpointURL, cfg.S3BucketName)
	}
	return &Store{client: client, bucket: cfg.S3BucketName, publicURL: publicURL}
}

// Upload streams an object to S3 under key and returns its public URL.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}

// Delete removes an object from S3.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
