// Package s3 stores CV files in an S3 bucket and hands out presigned
// download links.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/talenthub/careers-api/internal/app/storage"
)

const presignTTL = time.Hour

// Client implements storage.FileStore on top of an S3 bucket.
type Client struct {
	bucket  string
	api     *s3.Client
	presign *s3.PresignClient
}

var _ storage.FileStore = (*Client)(nil)

// New builds a Client from the ambient AWS configuration (environment,
// shared config files or instance role).
func New(ctx context.Context, bucket string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	api := s3.NewFromConfig(cfg)
	return &Client{
		bucket:  bucket,
		api:     api,
		presign: s3.NewPresignClient(api),
	}, nil
}

// Upload writes data under a fresh key derived from the upload date, a
// random id and the original filename, and returns that key.
func (c *Client) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := fmt.Sprintf("applications/%s-%s-%s", time.Now().UTC().Format("2006-01-02"), uuid.NewString(), filename)

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

// DownloadURL presigns a GET for key, valid for one hour.
func (c *Client) DownloadURL(ctx context.Context, key string) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return req.URL, nil
}
