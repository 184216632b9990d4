package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/restsynth/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseDefinitionsFile_YAMLList(t *testing.T) {
	path := writeFile(t, "requests.yaml", `
- name: listPets
  method: get
  url: "{{baseUrl}}/pets"
  query:
    - key: limit
      value: "{{limit}}"
  headers:
    - "X-Trace: {{trace}}"
- url: "{{baseUrl}}/health"
  auth:
    method: bearer
    token: "{{token}}"
`)

	defs, err := ParseDefinitionsFile(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "listPets", defs[0].Name)
	assert.Equal(t, "GET", defs[0].Method)
	assert.Equal(t, []types.QueryParam{{Key: "limit", Value: "{{limit}}"}}, defs[0].QueryParams)
	assert.Equal(t, types.AuthInherit, defs[0].Auth.Method)

	assert.Equal(t, "request-2", defs[1].Name)
	assert.Equal(t, "GET", defs[1].Method)
	assert.Equal(t, types.AuthBearer, defs[1].Auth.Method)
	assert.Equal(t, "{{token}}", defs[1].Auth.Token)
}

func TestParseDefinitionsFile_SingleJSON(t *testing.T) {
	path := writeFile(t, "create.json", `{"name": "create", "method": "POST", "url": "http://x/items", "body": "@item.json"}`)

	defs, err := ParseDefinitionsFile(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "create", defs[0].Name)
	assert.Equal(t, "@item.json", defs[0].Body)
}

func TestParseDefinitionsFile_Errors(t *testing.T) {
	_, err := ParseDefinitionsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	openapi := writeFile(t, "spec.yaml", "openapi: 3.0.3\ninfo:\n  title: x\n  version: '1'\npaths: {}\n")
	_, err = ParseDefinitionsFile(openapi)
	assert.ErrorContains(t, err, "OpenAPI document")

	noURL := writeFile(t, "bad.yaml", "name: nothing\n")
	_, err = ParseDefinitionsFile(noURL)
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		expected string
	}{
		{"openapi yaml", "spec.yml", "openapi: 3.1.0\n", FormatOpenAPI},
		{"swagger json", "spec.json", `{"swagger": "2.0"}`, FormatOpenAPI},
		{"definitions json", "reqs.json", `[{"url": "http://x"}]`, FormatJSON},
		{"definitions yaml", "reqs.yaml", "- url: http://x\n", FormatYAML},
		{"no extension json", "reqs", `[{"url": "http://x"}]`, FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := DetectFormat(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}
