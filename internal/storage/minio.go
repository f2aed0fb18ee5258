package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/farmrakshaa/backend/internal/apperr"
	"github.com/farmrakshaa/backend/internal/config"
)

// MaxDocumentSize caps vet document uploads at 5 MiB.
const MaxDocumentSize = 5 << 20

var allowedExtensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

// DocumentStore persists vet proof documents in a MinIO bucket.
type DocumentStore struct {
	client *minio.Client
	bucket string
}

// NewDocumentStore connects to MinIO and makes sure the document bucket
// exists.
func NewDocumentStore(cfg config.Minio) (*DocumentStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio create bucket: %w", err)
		}
	}
	return &DocumentStore{client: client, bucket: cfg.Bucket}, nil
}

// Save validates and uploads one document, returning the object path stored
// on the user record.
func (s *DocumentStore) Save(ctx context.Context, kind string, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", apperr.Validation(apperr.FieldError{
			Field: kind, Message: "only JPEG, PNG and PDF files are allowed",
		})
	}
	if file.Size > MaxDocumentSize {
		return "", apperr.Validation(apperr.FieldError{
			Field: kind, Message: "file must not exceed 5 MB",
		})
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	objectName := fmt.Sprintf("documents/%s-%s%s", kind, uuid.NewString(), ext)
	_, err = s.client.PutObject(ctx, s.bucket, objectName, src, file.Size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s document: %w", kind, err)
	}
	return objectName, nil
}
