package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// MinioStore talks to MinIO or any S3-compatible endpoint.
type MinioStore struct {
	client *minio.Client
	region string
}

// NewMinioStore creates a MinIO client from a connection string with the
// keys Endpoint, AccessKey, SecretKey and optionally UseSSL and Region.
func NewMinioStore(connectionString string) (*MinioStore, error) {
	params, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}
	endpoint, err := params.Require("Endpoint")
	if err != nil {
		return nil, err
	}
	accessKey, err := params.Require("AccessKey")
	if err != nil {
		return nil, err
	}
	secretKey, err := params.Require("SecretKey")
	if err != nil {
		return nil, err
	}
	useSSL, err := params.Bool("UseSSL", false)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: params.Get("Region"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	return &MinioStore{client: client, region: params.Get("Region")}, nil
}

// ensureBucket creates the bucket if it doesn't exist
func (m *MinioStore) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("error checking if bucket exists: %w", err)
	}

	if !exists {
		err = m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.region})
		if err != nil {
			return fmt.Errorf("error creating bucket: %w", err)
		}
		log.Info().Str("bucket", bucket).Msg("created bucket")
	}

	return nil
}

// Exists stats the object; missing keys and buckets report false.
func (m *MinioStore) Exists(ctx context.Context, bucket, objectName string) (bool, error) {
	_, err := m.client.StatObject(ctx, bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %s: %w", objectName, err)
	}
	return true, nil
}

// Get retrieves an object from MinIO
func (m *MinioStore) Get(ctx context.Context, bucket, objectName string) ([]byte, error) {
	object, err := m.client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return nil, fmt.Errorf("%s: %w", objectName, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", objectName, err)
	}
	defer object.Close()

	var buffer bytes.Buffer
	// GetObject is lazy; a missing key only surfaces on the first read.
	if _, err := buffer.ReadFrom(object); err != nil {
		if isMinioNotFound(err) {
			return nil, fmt.Errorf("%s: %w", objectName, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read object %s: %w", objectName, err)
	}

	return buffer.Bytes(), nil
}

// Put saves data to MinIO with the given content type
func (m *MinioStore) Put(ctx context.Context, bucket, objectName string, data []byte, contentType string) error {
	if err := m.ensureBucket(ctx, bucket); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	options := minio.PutObjectOptions{
		ContentType: contentType,
	}

	_, err := m.client.PutObject(ctx, bucket, objectName, bytes.NewReader(data), int64(len(data)), options)
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", objectName, err)
	}

	log.Debug().Str("bucket", bucket).Str("object", objectName).Int("size", len(data)).Msg("saved object to MinIO")
	return nil
}

// Delete removes an object from MinIO. RemoveObject succeeds on missing
// keys, so existence is checked first.
func (m *MinioStore) Delete(ctx context.Context, bucket, objectName string) error {
	exists, err := m.Exists(ctx, bucket, objectName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s: %w", objectName, ErrNotFound)
	}

	err = m.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectName, err)
	}

	log.Debug().Str("bucket", bucket).Str("object", objectName).Msg("deleted object from MinIO")
	return nil
}

// Close is a no-op; the MinIO client holds no resources beyond its transport.
func (m *MinioStore) Close() error { return nil }

func isMinioNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return true
	}
	return false
}
