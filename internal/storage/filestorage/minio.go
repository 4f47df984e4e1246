package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectClient is the subset of *minio.Client the backend needs.
type ObjectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

const processedContentType = "image/jpeg"

// MinioBackend mirrors artifacts into an S3-compatible bucket.
type MinioBackend struct {
	client ObjectClient
	bucket string
}

func NewMinioBackend(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioBackend, error) {
	const op = "filestorage.NewMinioBackend"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return NewMinioBackendWithClient(client, bucket), nil
}

func NewMinioBackendWithClient(client ObjectClient, bucket string) *MinioBackend {
	return &MinioBackend{client: client, bucket: bucket}
}

func (b *MinioBackend) Name() string {
	return "s3:" + b.bucket
}

func (b *MinioBackend) Put(ctx context.Context, name, srcPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = b.client.PutObject(ctx, b.bucket, path.Base(name), f, info.Size(),
		minio.PutObjectOptions{ContentType: processedContentType})

	return err
}

func (b *MinioBackend) Delete(ctx context.Context, name string) error {
	return b.client.RemoveObject(ctx, b.bucket, path.Base(name), minio.RemoveObjectOptions{})
}
