package builder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/restsynth/internal/parser"
	"github.com/studiowebux/restsynth/internal/types"
)

func TestBuildURI(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     types.Vars
		query    []string
		expected string
	}{
		{
			name:     "extra query parameters",
			template: "http://example.com/",
			vars:     types.Vars{"value2": "dynamic"},
			query:    []string{"key1=value1", "key2={{value2}}"},
			expected: "http://example.com/?key1=value1&key2=dynamic",
		},
		{
			name:     "no query parameters",
			template: "http://example.com/api/{{endpoint}}",
			vars:     types.Vars{"endpoint": "users"},
			expected: "http://example.com/api/users",
		},
		{
			name:     "existing parameter is overwritten",
			template: "http://example.com/search?q=old&page=1",
			query:    []string{"q=new"},
			expected: "http://example.com/search?q=new&page=1",
		},
		{
			name:     "duplicates collapse to last value",
			template: "http://example.com/",
			query:    []string{"tag=a", "tag=b"},
			expected: "http://example.com/?tag=b",
		},
		{
			name:     "values are escaped",
			template: "http://example.com/",
			query:    []string{"q=a b&c"},
			expected: "http://example.com/?q=a+b%26c",
		},
		{
			name:     "literal braces are percent encoded",
			template: "http://example.com/pets/{petId}",
			expected: "http://example.com/pets/%7BpetId%7D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := BuildURI(tt.template, tt.vars, parser.ParseQuery(tt.query, tt.vars))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, uri)
		})
	}
}

func TestBuildURI_Invalid(t *testing.T) {
	for _, raw := range []string{"http://", "/relative/path", "example.com", "http://bad host/%zz"} {
		t.Run(raw, func(t *testing.T) {
			_, err := BuildURI(raw, nil, nil)
			assert.True(t, errors.Is(err, types.ErrInvalidURI), "got %v", err)
		})
	}
}

func TestFileBodyLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "body.txt"), []byte("hello-body"), 0644))

	loader := FileBodyLoader{}

	body, err := loader.Load("")
	require.NoError(t, err)
	assert.Equal(t, "", body)

	body, err = loader.Load("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", body)

	body, err = loader.Load("@" + filepath.Join(dir, "body.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello-body", body)

	body, err = FileBodyLoader{BaseDir: dir}.Load("@body.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello-body", body)

	_, err = loader.Load("@" + filepath.Join(dir, "non-existent-file-xyz"))
	assert.True(t, errors.Is(err, types.ErrFileNotFound))
}
