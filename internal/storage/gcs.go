package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GCSStore implements Store on Google Cloud Storage.
type GCSStore struct {
	client    *gcs.Client
	projectID string
}

// NewGCSStore creates a GCS client. Recognised connection string keys:
// CredentialsFile, Endpoint, ProjectId (needed to create missing buckets)
// and Anonymous. Without CredentialsFile, application default credentials
// are used.
func NewGCSStore(ctx context.Context, connectionString string) (*GCSStore, error) {
	params, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}
	anonymous, err := params.Bool("Anonymous", false)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if file := params.Get("CredentialsFile"); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	if endpoint := params.Get("Endpoint"); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if anonymous {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create gcloud client: %w", err)
	}
	return &GCSStore{client: client, projectID: params.Get("ProjectId")}, nil
}

// Exists reads the object attributes.
func (g *GCSStore) Exists(ctx context.Context, bucket, path string) (bool, error) {
	_, err := g.client.Bucket(bucket).Object(path).Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("gcs: object attrs: %w", err)
	}
	return true, nil
}

// Get reads the whole object.
func (g *GCSStore) Get(ctx context.Context, bucket, path string) ([]byte, error) {
	r, err := g.client.Bucket(bucket).Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
			return nil, fmt.Errorf("gcs: %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("gcs: open reader: %w", err)
	}
	defer r.Close()

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs: read object: %w", err)
	}
	return body, nil
}

// Put writes content, creating the bucket when a ProjectId is configured.
func (g *GCSStore) Put(ctx context.Context, bucket, path string, content []byte, contentType string) error {
	if err := g.ensureBucket(ctx, bucket); err != nil {
		return err
	}

	w := g.client.Bucket(bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return fmt.Errorf("could not write file to gcs: %w", err)
	}

	// Close, just like writing a file.
	if err := w.Close(); err != nil {
		return fmt.Errorf("could not close gcs writer: %w", err)
	}
	return nil
}

// Delete removes the object.
func (g *GCSStore) Delete(ctx context.Context, bucket, path string) error {
	err := g.client.Bucket(bucket).Object(path).Delete(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
			return fmt.Errorf("gcs: %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("gcs: delete object: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (g *GCSStore) Close() error {
	return g.client.Close()
}

func (g *GCSStore) ensureBucket(ctx context.Context, bucket string) error {
	handle := g.client.Bucket(bucket)
	_, err := handle.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gcs.ErrBucketNotExist) {
		return fmt.Errorf("gcs: bucket attrs: %w", err)
	}
	if g.projectID == "" {
		return fmt.Errorf("gcs: bucket %s does not exist and no ProjectId is configured to create it", bucket)
	}
	if err := handle.Create(ctx, g.projectID, nil); err != nil {
		return fmt.Errorf("gcs: create bucket: %w", err)
	}
	log.Info().Str("bucket", bucket).Msg("created bucket")
	return nil
}
