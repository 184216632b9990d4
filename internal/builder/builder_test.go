package builder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/restsynth/internal/types"
)

type countingLoader struct {
	calls int
}

func (l *countingLoader) Load(spec string) (string, error) {
	l.calls++
	return spec, nil
}

func TestBuild_ConstructsRequestData(t *testing.T) {
	// Given: a body file and a template referencing it
	bodyPath := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(bodyPath, []byte(`{"owner": "{{owner}}"}`), 0644))

	opts := types.RequestOptions{
		Method:          "post",
		URL:             "https://example.test/api/{{id}}",
		Body:            "@" + bodyPath,
		QueryParameters: []string{"p=1"},
		Headers:         []string{"X-Custom: v", "Authorization: Bearer ${token}"},
	}
	vars := types.Vars{"id": "100", "owner": "ana", "token": "t"}

	// When
	data, err := New(nil).Build(opts, vars)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "POST", data.Method)
	assert.Equal(t, "https://example.test/api/100?p=1", data.URI)
	assert.Equal(t, `{"owner": "ana"}`, data.Body)
	assert.Equal(t, []types.KeyValue{
		{Key: "X-Custom", Value: "v"},
		{Key: "Authorization", Value: "Bearer t"},
	}, data.Headers)
}

func TestBuild_ReportsAllMissingVariables(t *testing.T) {
	loader := &countingLoader{}
	opts := types.RequestOptions{
		Method:          "GET",
		URL:             "https://x/{{id}}",
		Body:            "{{payload}}",
		QueryParameters: []string{"q={{missing}}", "again={{ID}}"},
		Headers:         []string{"X-Token: {{token}}"},
	}

	_, err := New(loader).Build(opts, types.Vars{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMissingVariable))

	var missingErr *types.MissingVariableError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, []string{"id", "payload", "missing", "token"}, missingErr.Names)
	assert.Zero(t, loader.calls, "body must not be loaded when validation fails")
}

func TestBuild_ValidatesBeforeFileAccess(t *testing.T) {
	opts := types.RequestOptions{
		URL:  "https://x/{{id}}",
		Body: "@" + filepath.Join(t.TempDir(), "does-not-exist.json"),
	}

	_, err := New(nil).Build(opts, nil)

	assert.True(t, errors.Is(err, types.ErrMissingVariable))
	assert.False(t, errors.Is(err, types.ErrFileNotFound))
}

func TestBuild_MissingBodyFile(t *testing.T) {
	opts := types.RequestOptions{
		URL:  "https://x/",
		Body: "@" + filepath.Join(t.TempDir(), "does-not-exist.json"),
	}

	_, err := New(nil).Build(opts, nil)

	assert.True(t, errors.Is(err, types.ErrFileNotFound))
}

func TestBuild_BodyFilePlaceholderMissing(t *testing.T) {
	bodyPath := filepath.Join(t.TempDir(), "body.txt")
	require.NoError(t, os.WriteFile(bodyPath, []byte("hello {{who}}"), 0644))

	_, err := New(nil).Build(types.RequestOptions{URL: "https://x/", Body: "@" + bodyPath}, nil)

	var missingErr *types.MissingVariableError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, []string{"who"}, missingErr.Names)
}

func TestBuild_MalformedFragmentsAreSkipped(t *testing.T) {
	opts := types.RequestOptions{
		URL:             "https://x/",
		QueryParameters: []string{"novalue", "=1", "ok=1", "blank={{blank}}"},
		Headers:         []string{"Broken", "X-Ok: yes"},
	}

	data, err := New(nil).Build(opts, types.Vars{"blank": ""})

	require.NoError(t, err)
	assert.Equal(t, "GET", data.Method)
	assert.Equal(t, "https://x/?ok=1", data.URI)
	assert.Equal(t, []types.KeyValue{{Key: "X-Ok", Value: "yes"}}, data.Headers)
}

func TestBuild_InvalidURI(t *testing.T) {
	_, err := New(nil).Build(types.RequestOptions{URL: "{{host}}/path"}, types.Vars{"host": "no-scheme"})

	assert.True(t, errors.Is(err, types.ErrInvalidURI))
}

func TestMissingVariables_IgnoresKeys(t *testing.T) {
	opts := types.RequestOptions{
		URL:             "https://x/",
		QueryParameters: []string{"{{key}}=v"},
		Headers:         []string{"{{Name}}: v"},
	}

	assert.Nil(t, MissingVariables(opts, nil))
}
