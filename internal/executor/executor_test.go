package executor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/restsynth/internal/types"
)

func TestExecute(t *testing.T) {
	var gotMethod, gotBody, gotQuery string
	var gotAccept []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Values("Accept")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("X-Reply", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	result, err := Execute(context.Background(), types.RequestData{
		Method: "POST",
		URI:    server.URL + "/items?a=1",
		Headers: []types.KeyValue{
			{Key: "Accept", Value: "application/json"},
			{Key: "Accept", Value: "text/plain"},
		},
		Body: `{"name":"x"}`,
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "a=1", gotQuery)
	assert.Equal(t, []string{"application/json", "text/plain"}, gotAccept)
	assert.Equal(t, `{"name":"x"}`, gotBody)

	assert.Equal(t, http.StatusCreated, result.Status)
	assert.Equal(t, "201 Created", result.StatusText)
	assert.Equal(t, "yes", result.Headers["X-Reply"])
	assert.Equal(t, `{"id":1}`, result.Body)
	assert.Equal(t, 12, result.RequestSize)
	assert.Equal(t, 8, result.ResponseSize)
	assert.Empty(t, result.Error)
}

func TestExecute_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	result, err := Execute(context.Background(), types.RequestData{Method: "GET", URI: server.URL}, Options{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	assert.Zero(t, result.Status)
	assert.NotEmpty(t, result.Error)
}

func TestExecute_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	result, err := Execute(context.Background(), types.RequestData{URI: url}, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Error)
}

func TestExecute_InvalidRequest(t *testing.T) {
	_, err := Execute(context.Background(), types.RequestData{Method: "BAD METHOD", URI: "http://x"}, Options{})
	assert.Error(t, err)
}

func TestExecute_BadCAFile(t *testing.T) {
	_, err := Execute(context.Background(), types.RequestData{URI: "https://x"}, Options{TLS: &TLSConfig{CAFile: "/does/not/exist.pem"}})
	assert.ErrorContains(t, err, "CA certificate")
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "999ms", FormatDuration(999))
	assert.Equal(t, "1.50s", FormatDuration(1500))
	assert.Equal(t, "512B", FormatSize(512))
	assert.Equal(t, "2.00KB", FormatSize(2048))
	assert.True(t, IsSuccessStatus(204))
	assert.False(t, IsSuccessStatus(301))
}
