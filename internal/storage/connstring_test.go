package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	params, err := ParseConnectionString("Endpoint=localhost:9000; accesskey=minio ;SecretKey=abc==;UseSSL=true;")
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", params.Get("endpoint"))
	assert.Equal(t, "minio", params.Get("AccessKey"))
	assert.Equal(t, "abc==", params.Get("SECRETKEY"))
	assert.Equal(t, "", params.Get("Region"))

	ssl, err := params.Bool("UseSSL", false)
	require.NoError(t, err)
	assert.True(t, ssl)

	pathStyle, err := params.Bool("ForcePathStyle", true)
	require.NoError(t, err)
	assert.True(t, pathStyle)
}

func TestParseConnectionStringErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  string
	}{
		{"empty", "", "connection string is empty"},
		{"only separators", " ; ;", "connection string is empty"},
		{"no equals", "Endpoint=x;secretvalue", `malformed connection string segment "secr****"`},
		{"empty key", "=value", `malformed connection string segment "=val****"`},
		{"short segment", "abc", `malformed connection string segment "****"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConnectionString(tt.in)
			assert.EqualError(t, err, tt.err)
		})
	}
}

func TestConnParamsRequireAndBool(t *testing.T) {
	params, err := ParseConnectionString("Root=/tmp;UseSSL=maybe")
	require.NoError(t, err)

	root, err := params.Require("Root")
	require.NoError(t, err)
	assert.Equal(t, "/tmp", root)

	_, err = params.Require("Endpoint")
	assert.EqualError(t, err, "connection string is missing Endpoint")

	_, err = params.Bool("UseSSL", false)
	assert.ErrorContains(t, err, "connection string UseSSL")
}
