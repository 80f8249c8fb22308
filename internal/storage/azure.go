package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/rs/zerolog/log"
)

// AzureStore implements Store backed by Azure Blob Storage.
type AzureStore struct {
	client *azblob.Client
}

// NewAzureStore builds a client from a standard Azure storage connection
// string (DefaultEndpointsProtocol=...;AccountName=...;AccountKey=...).
func NewAzureStore(connectionString string) (*AzureStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azure: create client: %w", err)
	}
	return &AzureStore{client: client}, nil
}

// Exists reads the blob properties; a 404 for either the blob or the
// container reports false.
func (s *AzureStore) Exists(ctx context.Context, container, path string) (bool, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(container).NewBlobClient(path)
	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("azure: get properties: %w", err)
	}
	return true, nil
}

// Get downloads the whole blob.
func (s *AzureStore) Get(ctx context.Context, container, path string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, container, path, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return nil, fmt.Errorf("azure: %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("azure: download blob: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure: read blob: %w", err)
	}
	return data, nil
}

// Put uploads data as a block blob, creating the container first if needed.
func (s *AzureStore) Put(ctx context.Context, container, path string, data []byte, contentType string) error {
	_, err := s.client.CreateContainer(ctx, container, nil)
	if err != nil && !isContainerExists(err) {
		return fmt.Errorf("azure: create container: %w", err)
	}
	if err == nil {
		log.Info().Str("container", container).Msg("created container")
	}

	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{},
	}
	if contentType != "" {
		opts.HTTPHeaders.BlobContentType = to.Ptr(contentType)
	}
	if _, err := s.client.UploadBuffer(ctx, container, path, data, opts); err != nil {
		return fmt.Errorf("azure: upload blob: %w", err)
	}
	return nil
}

// Delete removes the blob.
func (s *AzureStore) Delete(ctx context.Context, container, path string) error {
	_, err := s.client.DeleteBlob(ctx, container, path, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return fmt.Errorf("azure: %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("azure: delete blob: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *AzureStore) Close() error { return nil }

func isContainerExists(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusConflict && strings.EqualFold(respErr.ErrorCode, "ContainerAlreadyExists")
	}
	return false
}

func isAzureNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusNotFound
	}
	return false
}
