package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds connection settings for the object-store backend.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps recording segments in an S3-compatible object store,
// one object per segment under a per-session prefix.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the object store and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrStorageUnavailable, err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: bucket check: %v", ErrStorageUnavailable, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%w: make bucket: %v", ErrStorageUnavailable, err)
		}
	}

	return &MinioStore{client: cli, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) prefix(sessionID string) string {
	return sessionID + "/"
}

func (s *MinioStore) ReplaceAll(ctx context.Context, sessionID string, segments []Segment) error {
	if err := s.Clear(ctx, sessionID); err != nil {
		return err
	}

	for i, seg := range segments {
		key := s.prefix(sessionID) + segmentKey(i)
		_, err := s.client.PutObject(ctx, s.bucket, key,
			bytes.NewReader(seg.Data), int64(len(seg.Data)),
			minio.PutObjectOptions{ContentType: seg.ContentType})
		if err != nil {
			return fmt.Errorf("%w: put %s: %v", ErrStorageUnavailable, key, err)
		}
	}
	return nil
}

func (s *MinioStore) ReadAll(ctx context.Context, sessionID string) ([]Segment, error) {
	keys, err := s.listKeys(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	segments := make([]Segment, 0, len(keys))
	for _, key := range keys {
		obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("%w: get %s: %v", ErrStorageUnavailable, key, err)
		}

		stat, err := obj.Stat()
		if err != nil {
			obj.Close()
			return nil, fmt.Errorf("%w: stat %s: %v", ErrStorageUnavailable, key, err)
		}
		data, err := io.ReadAll(obj)
		obj.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, key, err)
		}

		segments = append(segments, Segment{Data: data, ContentType: stat.ContentType})
	}
	return segments, nil
}

func (s *MinioStore) Clear(ctx context.Context, sessionID string) error {
	keys, err := s.listKeys(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("%w: remove %s: %v", ErrStorageUnavailable, key, err)
		}
	}
	return nil
}

func (s *MinioStore) listKeys(ctx context.Context, sessionID string) ([]string, error) {
	var keys []string
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix(sessionID),
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("%w: list: %v", ErrStorageUnavailable, info.Err)
		}
		keys = append(keys, info.Key)
	}
	return keys, nil
}
