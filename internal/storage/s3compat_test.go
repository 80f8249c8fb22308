package storage

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeS3 starts an in-memory S3 server for the lifetime of the test.
func newFakeS3(t *testing.T) *httptest.Server {
	t.Helper()
	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)
	return ts
}

func newFakeMinioStore(t *testing.T) Store {
	t.Helper()
	ts := newFakeS3(t)
	cs := "Endpoint=" + strings.TrimPrefix(ts.URL, "http://") + ";AccessKey=test;SecretKey=testsecret;UseSSL=false;Region=us-east-1"
	store, err := NewMinioStore(cs)
	require.NoError(t, err)
	return store
}

func newFakeS3Store(t *testing.T) Store {
	t.Helper()
	ts := newFakeS3(t)
	cs := "Region=us-east-1;Endpoint=" + ts.URL + ";ForcePathStyle=true;AccessKeyId=test;SecretAccessKey=testsecret"
	store, err := NewS3Store(cs)
	require.NoError(t, err)
	return store
}

// exerciseStore runs the full blob lifecycle against store, starting from a
// bucket that does not exist yet.
func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	const bucket = "general"

	exists, err := store.Exists(ctx, bucket, "myfile.txt")
	require.NoError(t, err)
	assert.False(t, exists, "missing bucket reports false")

	_, err = store.Get(ctx, bucket, "myfile.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, bucket, "myfile.txt", []byte("hello"), "text/plain"))

	exists, err = store.Exists(ctx, bucket, "myfile.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := store.Get(ctx, bucket, "myfile.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, store.Put(ctx, bucket, "myfile.txt", []byte("hello again"), ""))
	data, err = store.Get(ctx, bucket, "myfile.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello again"), data)

	_, err = store.Get(ctx, bucket, "other.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, bucket, "myfile.txt"))
	exists, err = store.Exists(ctx, bucket, "myfile.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.Delete(ctx, bucket, "myfile.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Close())
}

func TestMinioStoreAgainstFakeS3(t *testing.T) {
	exerciseStore(t, newFakeMinioStore(t))
}

func TestS3StoreAgainstFakeS3(t *testing.T) {
	exerciseStore(t, newFakeS3Store(t))
}

func TestBlobManagerOverFakeS3(t *testing.T) {
	ts := newFakeS3(t)
	open, err := OpenerFor("minio")
	require.NoError(t, err)
	manager := NewBlobManager(open, nil)
	ctx := context.Background()

	req := &Request{
		ConnectionString: "Endpoint=" + strings.TrimPrefix(ts.URL, "http://") + ";AccessKey=test;SecretKey=testsecret;Region=us-east-1",
		ContainerName:    "general",
		BlobPath:         "reports/q3.json",
		Content:          []byte(`{"total":3}`),
	}
	require.True(t, manager.UploadBlob(ctx, req).IsSuccess)

	resp := manager.GetBlob(ctx, req)
	require.True(t, resp.IsSuccess, resp.Message)
	assert.Equal(t, []byte(`{"total":3}`), resp.Content)

	resp = manager.ExistsBlob(ctx, req)
	require.True(t, resp.IsSuccess)
	assert.JSONEq(t, `{"DataType":"ExistsResponse","Exists":true}`, resp.Message)
}

func TestNewMinioStoreRequiresKeys(t *testing.T) {
	_, err := NewMinioStore("Endpoint=localhost:9000;AccessKey=a")
	assert.EqualError(t, err, "connection string is missing SecretKey")

	_, err = NewMinioStore("Endpoint=localhost:9000;AccessKey=a;SecretKey=b;UseSSL=perhaps")
	assert.Error(t, err)
}

func TestNewS3StoreRequiresRegion(t *testing.T) {
	_, err := NewS3Store("Endpoint=http://localhost:9000")
	assert.EqualError(t, err, "connection string is missing Region")
}
