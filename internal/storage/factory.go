package storage

import (
	"context"
	"fmt"
)

// Opener connects to a storage account described by a connection string.
type Opener func(ctx context.Context, connectionString string) (Store, error)

// OpenerFor returns the Opener for a provider name.
func OpenerFor(provider string) (Opener, error) {
	switch provider {
	case "azure":
		return func(_ context.Context, cs string) (Store, error) { return NewAzureStore(cs) }, nil
	case "minio":
		return func(_ context.Context, cs string) (Store, error) { return NewMinioStore(cs) }, nil
	case "s3":
		return func(_ context.Context, cs string) (Store, error) { return NewS3Store(cs) }, nil
	case "gcs":
		return func(ctx context.Context, cs string) (Store, error) { return NewGCSStore(ctx, cs) }, nil
	case "local":
		return func(_ context.Context, cs string) (Store, error) { return NewLocalStore(cs) }, nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", provider)
	}
}
