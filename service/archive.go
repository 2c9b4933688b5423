package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aman1195/risk-scan-pro/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archive keeps copies of submitted document text and saved contracts
// in object storage.
type Archive interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	URL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// DocumentKey is where a document's source text is archived
func DocumentKey(userID, documentID string) string {
	return path.Join("documents", userID, documentID, "source.txt")
}

// ContractKey is where a saved contract's HTML is archived
func ContractKey(userID, contractID string) string {
	return path.Join("contracts", userID, contractID, "contract.html")
}

type MinioArchive struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

func NewMinioArchive(cfg *config.MinioConfig) (*MinioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioArchive{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *MinioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (a *MinioArchive) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	return nil
}

// URL returns a presigned download link valid for ExpireDays
func (a *MinioArchive) URL(ctx context.Context, key string) (string, error) {
	expiry := time.Duration(a.config.ExpireDays) * 24 * time.Hour
	u, err := a.client.PresignedGetObject(ctx, a.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

func (a *MinioArchive) Remove(ctx context.Context, key string) error {
	err := a.client.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
