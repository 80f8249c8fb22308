package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Observer captures telemetry for facade operations.
type Observer interface {
	RecordOperation(operation string, duration time.Duration, sizeBytes int, err error)
}

// BlobManager is the storage facade. Each call opens a Store from the
// request's connection string, performs one operation and reports the
// outcome as a Response; it never returns a Go error.
type BlobManager struct {
	open     Opener
	observer Observer
	detector *ContentTypeDetector
}

// NewBlobManager creates a facade that connects through open. observer may
// be nil.
func NewBlobManager(open Opener, observer Observer) *BlobManager {
	return &BlobManager{
		open:     open,
		observer: observer,
		detector: NewContentTypeDetector(),
	}
}

// ExistsBlob reports whether the blob exists. On success Message holds the
// JSON encoded ExistsResponse.
func (m *BlobManager) ExistsBlob(ctx context.Context, req *Request) *Response {
	var exists bool
	resp := m.run(ctx, "exists", req, func(store Store) error {
		var err error
		exists, err = store.Exists(ctx, req.ContainerName, req.BlobPath)
		return err
	})
	if !resp.IsSuccess {
		return resp
	}
	payload, err := json.Marshal(ExistsResponse{DataType: "ExistsResponse", Exists: exists})
	if err != nil {
		return failure(err.Error())
	}
	return success(string(payload))
}

// GetBlob downloads the blob into Content.
func (m *BlobManager) GetBlob(ctx context.Context, req *Request) *Response {
	var content []byte
	resp := m.run(ctx, "get", req, func(store Store) error {
		var err error
		content, err = store.Get(ctx, req.ContainerName, req.BlobPath)
		return err
	})
	if !resp.IsSuccess {
		return resp
	}
	resp.Content = content
	return resp
}

// UploadBlob writes req.Content to the blob, overwriting it.
func (m *BlobManager) UploadBlob(ctx context.Context, req *Request) *Response {
	return m.run(ctx, "add", req, func(store Store) error {
		contentType := m.detector.Detect(req.ContentType, req.BlobPath, req.Content)
		return store.Put(ctx, req.ContainerName, req.BlobPath, req.Content, contentType)
	})
}

// DeleteBlob removes the blob.
func (m *BlobManager) DeleteBlob(ctx context.Context, req *Request) *Response {
	return m.run(ctx, "delete", req, func(store Store) error {
		return store.Delete(ctx, req.ContainerName, req.BlobPath)
	})
}

func (m *BlobManager) run(ctx context.Context, operation string, req *Request, fn func(Store) error) *Response {
	if err := req.Validate(); err != nil {
		return failure(err.Error())
	}

	start := time.Now()
	store, err := m.open(ctx, req.ConnectionString)
	if err != nil {
		m.record(operation, start, req, err)
		return failure(fmt.Sprintf("Unable to connect to storage: %v", err))
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close storage client")
		}
	}()

	err = fn(store)
	m.record(operation, start, req, err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return failure(fmt.Sprintf("Blob '%s' does not exist in container '%s'", req.BlobPath, req.ContainerName))
		}
		return failure(err.Error())
	}
	return success(fmt.Sprintf("Operation '%s' succeeded for blob '%s' in container '%s'", operation, req.BlobPath, req.ContainerName))
}

func (m *BlobManager) record(operation string, start time.Time, req *Request, err error) {
	duration := time.Since(start)
	event := log.Debug()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.
		Str("operation", operation).
		Str("container", req.ContainerName).
		Str("path", req.BlobPath).
		Dur("duration", duration).
		Msg("storage operation finished")

	if m.observer == nil {
		return
	}
	size := 0
	if operation == "add" {
		size = len(req.Content)
	}
	m.observer.RecordOperation(operation, duration, size, err)
}
