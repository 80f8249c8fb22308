package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ahmad-alkadri/simple-blob-manager/internal/storage"
)

type mockFacade struct {
	mock.Mock
}

func (m *mockFacade) ExistsBlob(ctx context.Context, req *storage.Request) *storage.Response {
	return m.response(m.Called(ctx, req))
}

func (m *mockFacade) GetBlob(ctx context.Context, req *storage.Request) *storage.Response {
	return m.response(m.Called(ctx, req))
}

func (m *mockFacade) UploadBlob(ctx context.Context, req *storage.Request) *storage.Response {
	return m.response(m.Called(ctx, req))
}

func (m *mockFacade) DeleteBlob(ctx context.Context, req *storage.Request) *storage.Response {
	return m.response(m.Called(ctx, req))
}

func (m *mockFacade) response(args mock.Arguments) *storage.Response {
	resp, _ := args.Get(0).(*storage.Response)
	return resp
}

type recorded struct {
	requests   []string
	rejections []string
}

func (r *recorded) RecordRequest(operation, outcome string) {
	r.requests = append(r.requests, operation+":"+outcome)
}

func (r *recorded) RecordRejection(reason string) {
	r.rejections = append(r.rejections, reason)
}
