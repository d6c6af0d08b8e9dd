package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveService keeps the raw uploaded spreadsheets in object storage so a
// batch can be audited or replayed after the fact.
type ArchiveService struct {
	client *minio.Client
	bucket string
}

func NewArchiveService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*ArchiveService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &ArchiveService{client: client, bucket: bucket}, nil
}

func (s *ArchiveService) EnsureBucketExists(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// Archive stores one uploaded file under uploads/<partition>/<batch>/<file>.
func (s *ArchiveService) Archive(ctx context.Context, inventoryName string, batchID uuid.UUID, fileName string, content []byte) error {
	objectName := path.Join("uploads", inventoryName, batchID.String(), path.Base(fileName))
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentTypeFor(fileName),
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", objectName, err)
	}
	return nil
}

func contentTypeFor(fileName string) string {
	if strings.HasSuffix(strings.ToLower(fileName), ".xlsx") {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/vnd.ms-excel"
}
