package cloud

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// S3API is the subset of the S3 client the uploader needs. It exists so
// tests can substitute a fake.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader copies build artifacts into an S3 bucket.
type Uploader struct {
	api S3API
}

// NewUploader creates an Uploader backed by a real S3 client.
func NewUploader(cfg aws.Config) *Uploader {
	return &Uploader{api: s3.NewFromConfig(cfg)}
}

// NewUploaderWithAPI creates an Uploader with a custom API implementation,
// primarily for testing.
func NewUploaderWithAPI(api S3API) *Uploader {
	return &Uploader{api: api}
}

// UploadResult describes a completed upload.
type UploadResult struct {
	Bucket      string
	Key         string
	ETag        string
	Size        int64
	ContentType string
	Duration    time.Duration
}

// UploadFile uploads a local file to s3://bucket/key, detecting the content
// type from the file contents.
func (u *Uploader) UploadFile(ctx context.Context, bucket, key, path string) (*UploadResult, error) {
	if bucket == "" {
		return nil, fmt.Errorf("upload: bucket name cannot be empty")
	}
	if key == "" {
		return nil, fmt.Errorf("upload: object key cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	contentType := defaultContentType
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = mt.String()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer f.Close()

	start := time.Now()
	out, err := u.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading s3://%s/%s: %w", bucket, key, err)
	}

	return &UploadResult{
		Bucket:      bucket,
		Key:         key,
		ETag:        aws.ToString(out.ETag),
		Size:        info.Size(),
		ContentType: contentType,
		Duration:    time.Since(start),
	}, nil
}
