package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/amptron-th/testdoc-api/pkg/config"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

// S3Store stores artifacts in an S3-compatible bucket. Folders are key
// prefixes; download locators are presigned GET URLs.
type S3Store struct {
	client      *minio.Client
	bucket      string
	region      string
	endpoint    string
	secure      bool
	downloadTTL time.Duration
	timeout     time.Duration
	logger      *zap.Logger
}

// NewS3Store connects to the endpoint and ensures the bucket exists.
func NewS3Store(cfg config.StoreConfig, logger *zap.Logger) (*S3Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s3 := cfg.S3

	client, err := minio.New(s3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3.AccessKey, s3.SecretKey, ""),
		Secure: s3.UseSSL,
		Region: s3.Region,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status, "connect to object store")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	store := &S3Store{
		client:      client,
		bucket:      s3.Bucket,
		region:      s3.Region,
		endpoint:    s3.Endpoint,
		secure:      s3.UseSSL,
		downloadTTL: s3.DownloadTTL,
		timeout:     timeout,
		logger:      logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status, "check bucket")
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status, "create bucket")
	}
	s.logger.Info("bucket created", zap.String("bucket", s.bucket))
	return nil
}

// EnsureFolder maps a normalized folder name to a key prefix. Object stores
// have no real folders, so no remote call is needed and the operation is
// trivially idempotent.
func (s *S3Store) EnsureFolder(_ context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	return name + "/", nil
}

// Put writes the object under its folder prefix. The view locator is the
// public object URL; the download locator is a presigned GET.
func (s *S3Store) Put(ctx context.Context, obj Object) (*StoredObject, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := obj.FolderID + obj.Name

	info, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(obj.Data), int64(len(obj.Data)),
		minio.PutObjectOptions{ContentType: obj.MimeType})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status, "upload file")
	}

	download, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.downloadTTL, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status, "presign download")
	}

	s.logger.Info("artifact stored",
		zap.String("key", info.Key),
		zap.String("bucket", s.bucket),
		zap.Int64("bytes", info.Size))

	scheme := "http"
	if s.secure {
		scheme = "https"
	}
	return &StoredObject{
		RemoteID:    info.Key,
		ViewURL:     fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, info.Key),
		DownloadURL: download.String(),
	}, nil
}
