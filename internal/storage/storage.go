package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when the blob (or its container) does
// not exist.
var ErrNotFound = errors.New("blob not found")

// Store is a connected client against one storage account. Every method
// addresses a blob by container and path.
type Store interface {
	// Exists reports whether path exists in container. A missing container
	// is reported as false, not as an error.
	Exists(ctx context.Context, container, path string) (bool, error)

	// Get returns the full content of the blob.
	Get(ctx context.Context, container, path string) ([]byte, error)

	// Put writes data to the blob, creating the container when missing.
	Put(ctx context.Context, container, path string, data []byte, contentType string) error

	// Delete removes the blob. It returns ErrNotFound when there is nothing
	// to delete.
	Delete(ctx context.Context, container, path string) error

	// Close releases the client.
	Close() error
}

// Request describes one blob operation. It is built per HTTP request and
// discarded with the response.
type Request struct {
	ConnectionString string
	ContainerName    string
	BlobPath         string
	// Content is the raw request body for add (and, unused, delete).
	Content []byte
	// ContentType is the Content-Type header sent with add, if any.
	ContentType string
}

// Validate checks the fields every operation needs.
func (r *Request) Validate() error {
	switch {
	case r == nil:
		return errors.New("request is nil")
	case r.ConnectionString == "":
		return errors.New("connection string is not set")
	case r.ContainerName == "":
		return errors.New("container name is not set")
	case r.BlobPath == "":
		return errors.New("blob path is not set")
	}
	return nil
}

// Response is the outcome of one facade call.
type Response struct {
	IsSuccess bool
	Message   string
	// Content is set only for a successful get.
	Content []byte
}

// ExistsResponse is the payload returned by a successful exists check.
type ExistsResponse struct {
	DataType string `json:"DataType"`
	Exists   bool   `json:"Exists"`
}

func failure(msg string) *Response {
	return &Response{Message: msg}
}

func success(msg string) *Response {
	return &Response{IsSuccess: true, Message: msg}
}
