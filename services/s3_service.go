package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BlobStore is the object-store surface the message services depend on. Blob
// deletion is best-effort; callers log failures and continue.
type BlobStore interface {
	UploadFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, prefix string) (string, error)
	DeleteByURL(ctx context.Context, fileURL string) error
}

// S3Service implements BlobStore against an S3 bucket.
type S3Service struct {
	Client *s3.Client
	Bucket string
}

// NewS3Service initializes the S3 client from the ambient AWS config.
func NewS3Service(bucket string) *S3Service {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return &S3Service{Client: s3.NewFromConfig(cfg), Bucket: bucket}
}

// UploadFile streams a multipart upload to S3 under prefix and returns the
// public object URL.
func (s *S3Service) UploadFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, prefix string) (string, error) {
	key := fmt.Sprintf("%s/%d_%s", prefix, time.Now().UnixMilli(), header.Filename)

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(header.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload '%s' to S3: %w", key, err)
	}

	region := os.Getenv("AWS_REGION")
	fileURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, region, key)
	log.Printf("✅ Uploaded %s to S3", fileURL)
	return fileURL, nil
}

// DeleteByURL removes the object referenced by a stored file URL. Used when a
// recall or delete supersedes an uploaded attachment.
func (s *S3Service) DeleteByURL(ctx context.Context, fileURL string) error {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return fmt.Errorf("invalid file URL '%s': %w", fileURL, err)
	}
	key := strings.TrimPrefix(parsed.Path, "/")
	if key == "" {
		return fmt.Errorf("no object key in file URL '%s'", fileURL)
	}

	_, err = s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete '%s' from S3: %w", key, err)
	}
	return nil
}
