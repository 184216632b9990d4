package openapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	oas "github.com/erraggy/oastools/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/restsynth/internal/builder"
	"github.com/studiowebux/restsynth/internal/types"
)

const petstore = `openapi: 3.0.3
info:
  title: Pets
  version: "1.0"
servers:
  - url: https://{env}.example.com/v1
    variables:
      env:
        default: api
paths:
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: string
    get:
      operationId: getPet
      parameters:
        - name: verbose
          in: query
          schema:
            type: boolean
        - name: X-Request-Id
          in: header
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          required: true
          schema:
            type: integer
        - name: tag
          in: query
          schema:
            type: string
      responses:
        "200":
          description: ok
    post:
      operationId: createPet
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
      responses:
        "201":
          description: created
`

func mustParse(t *testing.T, content string) *Document {
	t.Helper()
	doc, err := Parse([]byte(content), false)
	require.NoError(t, err)
	return doc
}

func TestParse_PathOrderFollowsSource(t *testing.T) {
	doc := mustParse(t, petstore)

	var seen []string
	for _, ref := range doc.Operations() {
		seen = append(seen, ref.Method+" "+ref.Path)
	}

	assert.Equal(t, []string{"GET /pets/{petId}", "GET /pets", "POST /pets"}, seen)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		strict  bool
	}{
		{"empty", "   ", false},
		{"not a document", "just text", false},
		{"swagger 2.0", "swagger: \"2.0\"\ninfo:\n  title: x\n  version: \"1\"\npaths: {}\n", false},
		{
			"strict duplicate operationId",
			"openapi: 3.0.3\ninfo:\n  title: x\n  version: \"1\"\npaths:\n" +
				"  /a:\n    get:\n      operationId: same\n      responses:\n        \"200\":\n          description: ok\n" +
				"  /b:\n    get:\n      operationId: same\n      responses:\n        \"200\":\n          description: ok\n",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), tt.strict)
			assert.True(t, errors.Is(err, types.ErrInvalidDocument), "got %v", err)
		})
	}
}

func TestFindOperation(t *testing.T) {
	doc := mustParse(t, petstore)

	ref, err := FindOperation(doc, "GETPET")
	require.NoError(t, err)
	assert.Equal(t, "/pets/{petId}", ref.Path)
	assert.Equal(t, http.MethodGet, ref.Method)

	var names []string
	for _, p := range ref.Parameters {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"petId", "verbose", "X-Request-Id"}, names, "path item parameters come first")

	ref, err = FindOperation(doc, "createPet")
	require.NoError(t, err)
	assert.Equal(t, "/pets", ref.Path)
	assert.Equal(t, http.MethodPost, ref.Method)

	_, err = FindOperation(doc, "deletePet")
	assert.True(t, errors.Is(err, types.ErrOperationNotFound))

	_, err = FindOperation(doc, "  ")
	assert.True(t, errors.Is(err, types.ErrOperationNotFound))
}

func TestFindOperation_KeepsDuplicateParameterNames(t *testing.T) {
	doc := NewDocument(&oas.OAS3Document{
		Paths: oas.Paths{
			"/items": &oas.PathItem{
				Parameters: []*oas.Parameter{{Name: "tenant", In: "header"}},
				Get: &oas.Operation{
					OperationID: "listItems",
					Parameters:  []*oas.Parameter{{Name: "tenant", In: "header", Required: true}},
				},
			},
		},
	}, nil)

	ref, err := FindOperation(doc, "listItems")
	require.NoError(t, err)
	assert.Len(t, ref.Parameters, 2)

	_, err = BuildRequest(doc, "listItems", types.Vars{BaseURLVar: "http://x"})
	var missingErr *types.MissingVariableError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, []string{"tenant"}, missingErr.Names)

	opts, err := BuildRequest(doc, "listItems", types.Vars{BaseURLVar: "http://x", "tenant": "t1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant: t1"}, opts.Headers)
}

func TestBuildRequest(t *testing.T) {
	doc := mustParse(t, petstore)

	opts, err := BuildRequest(doc, "getPet", types.Vars{
		"petId":        "a b",
		"x-request-id": "r-{{suffix}}",
		"suffix":       "1",
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, opts.Method)
	assert.Equal(t, "https://api.example.com/v1/pets/a%20b", opts.URL)
	assert.Empty(t, opts.QueryParameters, "optional query parameter without a variable is omitted")
	assert.Equal(t, []string{"X-Request-Id: r-1"}, opts.Headers)
	assert.Empty(t, opts.Body)
}

func TestBuildRequest_ServerVariableOverride(t *testing.T) {
	doc := mustParse(t, petstore)

	opts, err := BuildRequest(doc, "listPets", types.Vars{"env": "staging", "limit": "10", "tag": "cat"})

	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com/v1/pets", opts.URL)
	assert.Equal(t, []string{"limit=10", "tag=cat"}, opts.QueryParameters)
}

func TestBuildRequest_MissingRequiredValues(t *testing.T) {
	doc := mustParse(t, petstore)

	_, err := BuildRequest(doc, "getPet", nil)

	var missingErr *types.MissingVariableError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, []string{"petId", "X-Request-Id"}, missingErr.Names)
}

func TestBuildRequest_Body(t *testing.T) {
	doc := mustParse(t, petstore)

	opts, err := BuildRequest(doc, "createPet", types.Vars{
		"createPet.body": `{"name": "{{name}}"}`,
		"body":           "generic",
		"name":           "rex",
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, opts.Method)
	assert.Equal(t, `{"name": "rex"}`, opts.Body)

	opts, err = BuildRequest(doc, "createPet", types.Vars{"body": "@pet.json"})
	require.NoError(t, err)
	assert.Equal(t, "@pet.json", opts.Body)

	_, err = BuildRequest(doc, "createPet", types.Vars{})
	var missingErr *types.MissingVariableError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, []string{BodyVar}, missingErr.Names)
}

func TestBuildRequest_OptionalBodyOmitted(t *testing.T) {
	doc := NewDocument(&oas.OAS3Document{
		Servers: []*oas.Server{{URL: "http://x"}},
		Paths: oas.Paths{
			"/notes": &oas.PathItem{
				Patch: &oas.Operation{
					OperationID: "patchNotes",
					RequestBody: &oas.RequestBody{Content: map[string]*oas.MediaType{"text/plain": {}}},
				},
			},
		},
	}, nil)

	opts, err := BuildRequest(doc, "patchNotes", nil)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, opts.Method)
	assert.Empty(t, opts.Body)
}

func TestBuildRequest_OptionalPathParameterLeftLiteral(t *testing.T) {
	doc := NewDocument(&oas.OAS3Document{
		Servers: []*oas.Server{{URL: "http://x/"}},
		Paths: oas.Paths{
			"/files/{folder}/{name}": &oas.PathItem{
				Get: &oas.Operation{
					OperationID: "getFile",
					Parameters: []*oas.Parameter{
						{Name: "folder", In: "path"},
						{Name: "name", In: "path", Required: true},
					},
				},
			},
		},
	}, nil)

	opts, err := BuildRequest(doc, "getFile", types.Vars{"name": "a.txt"})

	require.NoError(t, err)
	assert.Equal(t, "http://x/files/{folder}/a.txt", opts.URL)

	uri, err := builder.BuildURI(opts.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://x/files/%7Bfolder%7D/a.txt", uri)
}

func TestBuildRequest_BaseURL(t *testing.T) {
	paths := oas.Paths{"/status": &oas.PathItem{Get: &oas.Operation{OperationID: "status"}}}

	t.Run("baseUrl variable when no server", func(t *testing.T) {
		doc := NewDocument(&oas.OAS3Document{Paths: paths}, nil)
		_, err := BuildRequest(doc, "status", types.Vars{"baseUrl": "http://{{host}}/"})
		assert.True(t, errors.Is(err, types.ErrMissingVariable), "placeholders inside baseUrl must resolve")

		opts, err := BuildRequest(doc, "status", types.Vars{"baseUrl": "http://{{host}}/", "host": "h"})
		require.NoError(t, err)
		assert.Equal(t, "http://h/status", opts.URL)
	})

	t.Run("no server and no baseUrl", func(t *testing.T) {
		doc := NewDocument(&oas.OAS3Document{Paths: paths}, nil)
		_, err := BuildRequest(doc, "status", nil)
		assert.True(t, errors.Is(err, types.ErrInvalidDocument))
	})

	t.Run("relative server hangs off baseUrl", func(t *testing.T) {
		doc := NewDocument(&oas.OAS3Document{Servers: []*oas.Server{{URL: "/api/v3"}}, Paths: paths}, nil)
		opts, err := BuildRequest(doc, "status", types.Vars{"baseUrl": "https://petstore.io/"})
		require.NoError(t, err)
		assert.Equal(t, "https://petstore.io/api/v3/status", opts.URL)
	})

	t.Run("server placeholder without default", func(t *testing.T) {
		doc := NewDocument(&oas.OAS3Document{Servers: []*oas.Server{{URL: "https://{region}.x.io"}}, Paths: paths}, nil)
		_, err := BuildRequest(doc, "status", nil)
		var missingErr *types.MissingVariableError
		require.True(t, errors.As(err, &missingErr))
		assert.Equal(t, []string{"region"}, missingErr.Names)
	})
}

func TestJoinBaseAndPath(t *testing.T) {
	tests := []struct {
		base, path, expected string
	}{
		{"http://x", "/a", "http://x/a"},
		{"http://x/", "/a", "http://x/a"},
		{"http://x//", "a", "http://x/a"},
		{"http://x/v1", "", "http://x/v1"},
		{"", "https://abs.io/a", "https://abs.io/a"},
	}
	for _, tt := range tests {
		got, err := joinBaseAndPath(tt.base, tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}

	_, err := joinBaseAndPath("", "/relative")
	assert.True(t, errors.Is(err, types.ErrInvalidDocument))
}

func TestTemplates(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, TemplateNames("/x/{a}/{b}/{{c}}/${d}"))
	assert.Equal(t, "https://{{env}}.x.io/{{v}}", ToPlaceholders("https://{env}.x.io/{v}"))
	assert.Equal(t, "{{kept}}", ToPlaceholders("{{kept}}"))
}

func TestLoader_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(petstore))
	}))
	defer server.Close()

	specPath := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte(petstore), 0644))

	loader := &Loader{HTTPClient: server.Client()}
	ctx := context.Background()

	for _, src := range []types.OpenAPISource{
		{Kind: types.SourceURL, Value: server.URL + "/openapi.yaml"},
		{Kind: types.SourceFile, Value: specPath},
		{Kind: types.SourceRaw, Value: petstore},
	} {
		t.Run(string(src.Kind), func(t *testing.T) {
			doc, err := loader.Load(ctx, src)
			require.NoError(t, err)
			_, err = FindOperation(doc, "createPet")
			assert.NoError(t, err)
		})
	}

	failures := []types.OpenAPISource{
		{Kind: types.SourceURL, Value: ""},
		{Kind: types.SourceURL, Value: server.URL + "/missing.yaml"},
		{Kind: types.SourceFile, Value: filepath.Join(t.TempDir(), "nope.yaml")},
		{Kind: "ftp", Value: "x"},
	}
	for _, src := range failures {
		_, err := loader.Load(ctx, src)
		assert.True(t, errors.Is(err, types.ErrInvalidDocument), "source %+v: got %v", src, err)
	}
}
