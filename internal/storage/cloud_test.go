package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const azuriteConnectionString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
	"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
	"BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func TestNewAzureStore(t *testing.T) {
	store, err := NewAzureStore(azuriteConnectionString)
	require.NoError(t, err)
	assert.NoError(t, store.Close())

	_, err = NewAzureStore("AccountName=only")
	assert.Error(t, err)
}

func TestAzureErrorClassification(t *testing.T) {
	notFound := fmt.Errorf("wrapped: %w", &azcore.ResponseError{StatusCode: http.StatusNotFound, ErrorCode: "BlobNotFound"})
	exists := &azcore.ResponseError{StatusCode: http.StatusConflict, ErrorCode: "ContainerAlreadyExists"}
	beingDeleted := &azcore.ResponseError{StatusCode: http.StatusConflict, ErrorCode: "ContainerBeingDeleted"}

	assert.True(t, isAzureNotFound(notFound))
	assert.False(t, isAzureNotFound(exists))
	assert.False(t, isAzureNotFound(errors.New("dial tcp: refused")))

	assert.True(t, isContainerExists(exists))
	assert.False(t, isContainerExists(beingDeleted))
	assert.False(t, isContainerExists(notFound))
}

func TestS3ErrorClassification(t *testing.T) {
	assert.True(t, isS3NotFound(awserr.NewRequestFailure(awserr.New("NotFound", "Not Found", nil), http.StatusNotFound, "req")))
	assert.True(t, isS3NotFound(awserr.New(s3.ErrCodeNoSuchKey, "gone", nil)))
	assert.True(t, isS3NotFound(awserr.New(s3.ErrCodeNoSuchBucket, "gone", nil)))
	assert.False(t, isS3NotFound(awserr.NewRequestFailure(awserr.New("AccessDenied", "denied", nil), http.StatusForbidden, "req")))
	assert.False(t, isS3NotFound(errors.New("timeout")))
}

func TestNewGCSStoreAnonymous(t *testing.T) {
	store, err := NewGCSStore(context.Background(), "Anonymous=true;Endpoint=http://127.0.0.1:4443/storage/v1/")
	require.NoError(t, err)
	assert.NoError(t, store.Close())

	_, err = NewGCSStore(context.Background(), "Anonymous=sometimes")
	assert.Error(t, err)
}
