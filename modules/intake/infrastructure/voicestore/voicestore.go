// Package voicestore persists voice note recordings outside the database.
// Rows in the submissions table only carry a link back to the stored object.
package voicestore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/storefixhq/storefix/pkg/configuration"
)

// Store saves a recording and returns a stable link to it.
type Store interface {
	Put(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
}

// S3Store keeps voice notes in a MinIO/S3 bucket.
type S3Store struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

func NewS3Store(conf configuration.StorageOptions) (*S3Store, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &S3Store{
		client:        client,
		bucket:        conf.Bucket,
		publicBaseURL: strings.TrimSuffix(conf.PublicBaseURL, "/"),
	}, nil
}

// EnsureBucket creates the voice note bucket if it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *S3Store) Put(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return "", fmt.Errorf("put voice note %s: %w", objectKey, err)
	}
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, objectKey), nil
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, objectKey), nil
}

// InMemoryStore holds recordings in a map. Tests and local development only;
// it still serves concurrent requests, so access is locked.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

func (s *InMemoryStore) Put(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.mu.Lock()
	s.objects[objectKey] = buf
	s.mu.Unlock()
	return "mem://" + objectKey, nil
}

func (s *InMemoryStore) Get(objectKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, found := s.objects[objectKey]
	return data, found
}
