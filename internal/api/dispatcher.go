package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ahmad-alkadri/simple-blob-manager/internal/storage"
)

// BlobFacade performs blob operations and reports the outcome as an
// envelope.
type BlobFacade interface {
	ExistsBlob(ctx context.Context, req *storage.Request) *storage.Response
	GetBlob(ctx context.Context, req *storage.Request) *storage.Response
	UploadBlob(ctx context.Context, req *storage.Request) *storage.Response
	DeleteBlob(ctx context.Context, req *storage.Request) *storage.Response
}

type operationEntry struct {
	// readsBody marks operations that consume the request body before the
	// facade call.
	readsBody bool
	call      func(f BlobFacade, ctx context.Context, req *storage.Request) *storage.Response
}

var operations = map[Operation]operationEntry{
	OpExists: {call: BlobFacade.ExistsBlob},
	OpGet:    {call: BlobFacade.GetBlob},
	OpAdd:    {readsBody: true, call: BlobFacade.UploadBlob},
	// delete reads and discards the body; clients have always been allowed
	// to send one.
	OpDelete: {readsBody: true, call: BlobFacade.DeleteBlob},
}

// Dispatcher maps an operation onto exactly one facade call.
type Dispatcher struct {
	facade BlobFacade
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(facade BlobFacade) *Dispatcher {
	return &Dispatcher{facade: facade}
}

// Dispatch runs b against the facade. body may be nil for operations that
// do not read it. Every outcome is a Result; nothing is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, b *Binding, body io.Reader) (Result, ErrorKind) {
	entry, ok := operations[b.Operation]
	if !ok {
		return failureResult(fmt.Sprintf("Unexpected operation in querystring: '%s'", b.Operation)), KindUnrecognizedOperation
	}

	if entry.readsBody {
		content, err := readBody(body)
		if err != nil {
			return failureResult(bodyErrorMessage(err)), KindBodyUnreadable
		}
		b.Request.Content = content
	}

	resp := entry.call(d.facade, ctx, b.Request)
	if resp == nil {
		return failureResult("storage returned no response"), KindFacadeFailure
	}
	if !resp.IsSuccess {
		return failureResult(resp.Message), KindFacadeFailure
	}
	return b.Shape(b.Operation, resp), ""
}

func readBody(body io.Reader) ([]byte, error) {
	if body == nil {
		return []byte{}, nil
	}
	return io.ReadAll(body)
}

func bodyErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Sprintf("Request body exceeds the limit of %d bytes", tooLarge.Limit)
	}
	return fmt.Sprintf("Unable to read request body: %v", err)
}
