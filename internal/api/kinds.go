package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ahmad-alkadri/simple-blob-manager/internal/storage"
)

// Default tags used when trequest or tresponse is omitted.
const (
	DefaultRequestType  = "GeneralBlobRequest"
	DefaultResponseType = "BlobResponse"
)

// Operation is one of the four data operations.
type Operation string

const (
	OpExists Operation = "exists"
	OpGet    Operation = "get"
	OpAdd    Operation = "add"
	OpDelete Operation = "delete"
)

// RequestKinds maps trequest tags to the container each kind addresses.
// GeneralBlobRequest always maps to the default container; additional kinds
// come from configuration and are matched case-insensitively.
type RequestKinds struct {
	defaultContainer string
	extra            map[string]string
}

// NewRequestKinds builds the table. extra keys must already be lower-case.
func NewRequestKinds(defaultContainer string, extra map[string]string) *RequestKinds {
	return &RequestKinds{defaultContainer: defaultContainer, extra: extra}
}

// Container resolves tag to its container name.
func (k *RequestKinds) Container(tag string) (string, bool) {
	if tag == "" || tag == DefaultRequestType {
		return k.defaultContainer, true
	}
	container, ok := k.extra[strings.ToLower(tag)]
	return container, ok
}

// ResponseShaper turns a successful facade response into the HTTP result
// for op.
type ResponseShaper func(op Operation, resp *storage.Response) Result

// ResponseKinds is the finite set of tresponse tags.
var ResponseKinds = map[string]ResponseShaper{
	DefaultResponseType: shapeBlobResponse,
}

// shapeBlobResponse returns raw content for get, the existence payload for
// exists and an empty body otherwise.
func shapeBlobResponse(op Operation, resp *storage.Response) Result {
	switch op {
	case OpGet:
		return Result{Status: http.StatusOK, ContentType: "application/octet-stream", Body: resp.Content}
	case OpExists:
		return Result{Status: http.StatusOK, ContentType: "application/json; charset=utf-8", Body: []byte(resp.Message)}
	default:
		return Result{Status: http.StatusOK}
	}
}

// Result is the HTTP outcome of one data request.
type Result struct {
	Status      int
	ContentType string
	Body        []byte
	// Message is the failure text, kept for logging.
	Message string
}

// MessageDto is the body of every failure response.
type MessageDto struct {
	Message string `json:"message"`
}

func failureResult(msg string) Result {
	body, err := json.Marshal(MessageDto{Message: msg})
	if err != nil {
		body = []byte(`{"message":"internal error"}`)
	}
	return Result{
		Status:      http.StatusBadRequest,
		ContentType: "application/json; charset=utf-8",
		Body:        body,
		Message:     msg,
	}
}
