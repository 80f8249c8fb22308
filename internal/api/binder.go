package api

import (
	"fmt"

	"github.com/ahmad-alkadri/simple-blob-manager/internal/storage"
)

// Failure messages returned to clients.
const (
	MsgMalformedQuery       = "Querystring is not correctly formed"
	MsgMissingConfiguration = "Our storage connection string has not been set internally, please see an Administrator!"
	MsgMissingContainer     = "Our storage container has not been set internally, please see an Administrator!"
)

// ErrorKind classifies why a request was refused before reaching storage.
type ErrorKind string

const (
	KindDeadCanary               ErrorKind = "dead_canary"
	KindMalformedQuery           ErrorKind = "malformed_query"
	KindMissingConfiguration     ErrorKind = "missing_configuration"
	KindUnrecognizedRequestType  ErrorKind = "unrecognized_request_type"
	KindUnrecognizedResponseType ErrorKind = "unrecognized_response_type"
	KindUnrecognizedOperation    ErrorKind = "unrecognized_operation"
	KindBodyUnreadable           ErrorKind = "body_unreadable"
	KindFacadeFailure            ErrorKind = "facade_failure"
)

// BindError is returned when the query cannot be turned into a request.
type BindError struct {
	Kind    ErrorKind
	Message string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Query holds the raw query parameters of a data request.
type Query struct {
	Operation    string
	Path         string
	RequestType  string
	ResponseType string
}

// Binding is a validated data request ready for dispatch.
type Binding struct {
	Operation   Operation
	RequestType string
	Request     *storage.Request
	Shape       ResponseShaper
}

// Binder turns query parameters plus process configuration into a Binding.
type Binder struct {
	connectionString string
	kinds            *RequestKinds
}

// NewBinder creates a binder.
func NewBinder(connectionString string, kinds *RequestKinds) *Binder {
	return &Binder{connectionString: connectionString, kinds: kinds}
}

// Bind validates q. Checks run in a fixed order: missing operation or path,
// missing connection string, the request type tag and its container, then
// the response type tag. The operation value itself is validated by the
// dispatcher.
func (b *Binder) Bind(q Query) (*Binding, error) {
	if q.Operation == "" || q.Path == "" {
		return nil, &BindError{Kind: KindMalformedQuery, Message: MsgMalformedQuery}
	}
	if b.connectionString == "" {
		return nil, &BindError{Kind: KindMissingConfiguration, Message: MsgMissingConfiguration}
	}

	requestType := q.RequestType
	if requestType == "" {
		requestType = DefaultRequestType
	}
	container, ok := b.kinds.Container(requestType)
	if !ok {
		return nil, &BindError{
			Kind:    KindUnrecognizedRequestType,
			Message: fmt.Sprintf("Unexpected trequest in querystring: '%s'", q.RequestType),
		}
	}
	if container == "" {
		return nil, &BindError{Kind: KindMissingConfiguration, Message: MsgMissingContainer}
	}

	responseType := q.ResponseType
	if responseType == "" {
		responseType = DefaultResponseType
	}
	shape, ok := ResponseKinds[responseType]
	if !ok {
		return nil, &BindError{
			Kind:    KindUnrecognizedResponseType,
			Message: fmt.Sprintf("Unexpected tresponse in querystring: '%s'", q.ResponseType),
		}
	}

	return &Binding{
		Operation:   Operation(q.Operation),
		RequestType: requestType,
		Request: &storage.Request{
			ConnectionString: b.connectionString,
			ContainerName:    container,
			BlobPath:         q.Path,
		},
		Shape: shape,
	}, nil
}
