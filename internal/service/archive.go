package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/snapcook/backend/config"
)

type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive stores uploads in an S3 bucket under the uploads/ prefix.
type S3Archive struct {
	client s3PutAPI
	bucket string
}

// NewS3Archive creates an archive on the configured bucket.
func NewS3Archive(s3Config *config.S3Config) *S3Archive {
	return &S3Archive{client: s3Config.Client, bucket: s3Config.BucketName}
}

func (a *S3Archive) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := "uploads/" + archiveName(name)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", a.bucket, key), nil
}

// DiskArchive stores uploads in a local directory.
type DiskArchive struct {
	dir string
}

// NewDiskArchive creates the directory if needed.
func NewDiskArchive(dir string) (*DiskArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskArchive{dir: dir}, nil
}

func (a *DiskArchive) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	path := filepath.Join(a.dir, archiveName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return path, nil
}

// archiveName keeps the base of the client file name behind a unique prefix
// so uploads never overwrite each other.
func archiveName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		base = "upload"
	}
	return uuid.NewString() + "_" + base
}
