package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appconfig "github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/pkg/logger"
)

// UploadArchiver stores raw uploaded files for later inspection.
type UploadArchiver interface {
	ArchiveUpload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Storage builds the archiver, or nil when no bucket is configured.
func NewS3Storage(cfg *appconfig.S3Config) *S3Storage {
	if !cfg.Enabled() {
		return nil
	}

	var awsCfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			awsCfg = aws.Config{
				Region: cfg.Region,
			}
		}
	}

	return &S3Storage{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
	}
}

// ArchiveUpload stores one uploaded file under imports/<date>/<uuid><ext>
// and returns the object URL.
func (s *S3Storage) ArchiveUpload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	key := fmt.Sprintf("imports/%s/%s%s", time.Now().Format("2006-01-02"), uuid.New().String(), ext)

	logger.Debug("Archiving uploaded file to S3", map[string]interface{}{
		"bucket": s.bucket,
		"key":    key,
	})

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive upload: %w", err)
	}

	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key), nil
}
