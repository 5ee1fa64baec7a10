package storage

import (
	"context"
	"fmt"
	"io"

	"CommunityBoard/pkg/minio"
)

// minioStore 基于 MinIO 的 Store 实现，存储位置即对象名
type minioStore struct {
	client *minio.MinIOClient
}

// NewMinIOStore 创建 MinIO 附件存储
func NewMinIOStore(client *minio.MinIOClient) Store {
	return &minioStore{client: client}
}

func (s *minioStore) Store(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	res, err := s.client.Upload(ctx, r, size, minio.UploadOptions{
		ObjectName:  objectName,
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return res.ObjectName, nil
}

func (s *minioStore) Delete(ctx context.Context, location string) error {
	if err := s.client.Delete(ctx, location); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return nil
}

func (s *minioStore) Exists(ctx context.Context, location string) (bool, error) {
	ok, err := s.client.Exists(ctx, location)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return ok, nil
}
