package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/models"
)

// ErrEmptyAssetID is returned when deleting without an identifier.
var ErrEmptyAssetID = errors.New("storage: empty asset id")

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage stores media assets in an S3-compatible bucket.
type S3Storage struct {
	uploader objectUploader
	deleter  objectDeleter
	bucket   string
	baseURL  string
	prefix   string
}

// NewS3Storage configures an uploader targeting the provided object store.
func NewS3Storage(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Storage{
		uploader: uploader,
		deleter:  client,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		prefix:   "media",
	}, nil
}

// Upload copies the file at localPath into the bucket under a fresh key and
// returns its public URL and key. The local file is removed whether or not the
// upload succeeds.
func (s *S3Storage) Upload(ctx context.Context, localPath string) (models.Asset, error) {
	defer os.Remove(localPath)

	file, err := os.Open(localPath)
	if err != nil {
		return models.Asset{}, fmt.Errorf("s3 storage open %s: %w", localPath, err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(localPath))
	key := path.Join(s.prefix, uuid.NewString()+ext)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
		ACL:    s3types.ObjectCannedACLPublicRead,
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return models.Asset{}, fmt.Errorf("s3 storage upload %s: %w", key, err)
	}

	return models.Asset{URL: s.publicURL(key), ID: key}, nil
}

// Delete removes the object identified by assetID.
func (s *S3Storage) Delete(ctx context.Context, assetID string) error {
	key := strings.TrimLeft(assetID, "/")
	if key == "" {
		return ErrEmptyAssetID
	}

	_, err := s.deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.baseURL == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}
