// Package stagingstore wraps the S3-compatible Staging Store (spec section
// 1, 3, 6) behind a small interface, backed by github.com/minio/minio-go/v7
// -- the same client the teacher uses for its S3-source traverser
// (cmd/zc_traverser_s3.go, common/credentialFactory.go). Every call is
// wrapped in the retry policy from internal/retry.
package stagingstore

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/foldermover/foldermover/internal/config"
	"github.com/foldermover/foldermover/internal/retry"
)

// Store is the Staging Store surface every component depends on.
type Store interface {
	PutFile(ctx context.Context, key, localPath string) error
	PutBytes(ctx context.Context, key string, data []byte) error
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	GetToFile(ctx context.Context, key, localPath string) error
	Head(ctx context.Context, key string) (exists bool, size int64, err error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

type ObjectInfo struct {
	Key  string
	Size int64
}

type client struct {
	c      *minio.Client
	bucket string
	policy retry.Policy
}

// New connects to the Staging Store endpoint using static credentials, the
// same construction shape as the teacher's minio.New(endpoint, &minio.Options{...})
// call in common/credentialFactory.go.
func New(cfg *config.Config) (Store, error) {
	useSSL := !strings.HasPrefix(cfg.S3Endpoint, "http://")
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.S3Endpoint, "https://"), "http://")

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to staging store")
	}

	return &client{
		c:      mc,
		bucket: cfg.S3Bucket,
		policy: retry.DefaultPolicy(cfg.S3MaxRetries, cfg.MaxRetryDuration),
	}, nil
}

func (s *client) Bucket() string { return s.bucket }

func (s *client) PutFile(ctx context.Context, key, localPath string) error {
	_, err := retry.Do(ctx, s.policy, func(attempt int) (minio.UploadInfo, error) {
		return s.c.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{})
	})
	return err
}

func (s *client) PutBytes(ctx context.Context, key string, data []byte) error {
	_, err := retry.Do(ctx, s.policy, func(attempt int) (minio.UploadInfo, error) {
		r := newByteReader(data)
		return s.c.PutObject(ctx, s.bucket, key, r, int64(len(data)), minio.PutObjectOptions{})
	})
	return err
}

func (s *client) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := retry.Do(ctx, s.policy, func(attempt int) ([]byte, error) {
		obj, err := s.c.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, err
		}
		defer obj.Close()
		return io.ReadAll(obj)
	})
	if err != nil {
		if retry.Classify(err) == retry.ClassPermanent {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *client) GetToFile(ctx context.Context, key, localPath string) error {
	_, err := retry.Do(ctx, s.policy, func(attempt int) (struct{}, error) {
		return struct{}{}, s.c.FGetObject(ctx, s.bucket, key, localPath, minio.GetObjectOptions{})
	})
	return err
}

func (s *client) Head(ctx context.Context, key string) (bool, int64, error) {
	info, err := retry.Do(ctx, s.policy, func(attempt int) (minio.ObjectInfo, error) {
		return s.c.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	})
	if err != nil {
		if retry.Classify(err) == retry.ClassPermanent {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size, nil
}

func (s *client) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	return retry.Do(ctx, s.policy, func(attempt int) ([]ObjectInfo, error) {
		var out []ObjectInfo
		for obj := range s.c.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
			if obj.Err != nil {
				return nil, obj.Err
			}
			out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size})
		}
		return out, nil
	})
}

func (s *client) Delete(ctx context.Context, key string) error {
	_, err := retry.Do(ctx, s.policy, func(attempt int) (struct{}, error) {
		return struct{}{}, s.c.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	})
	return err
}
