package converter

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	oas "github.com/erraggy/oastools/parser"

	"github.com/studiowebux/restsynth/internal/openapi"
	"github.com/studiowebux/restsynth/internal/types"
)

// DeriveRequests builds one request definition per operation of doc, in
// document traversal order. Names come from the operationId, else the raw
// path. A name already taken gets -2, -3, ... appended.
func DeriveRequests(doc *openapi.Document) []types.RequestDefinition {
	ops := doc.Operations()
	defs := make([]types.RequestDefinition, 0, len(ops))
	names := newNameSet()

	for _, ref := range ops {
		def := operationToDefinition(ref)
		base := def.Name
		def.Name = names.claim(base)
		if def.Name != base {
			slog.Debug("renamed colliding request", "name", base, "renamed", def.Name)
		}
		defs = append(defs, def)
	}

	return defs
}

// operationToDefinition converts an OpenAPI operation to a request definition
func operationToDefinition(ref openapi.OperationRef) types.RequestDefinition {
	name := strings.TrimSpace(ref.Operation.OperationID)
	if name == "" {
		name = ref.Path
	}

	def := types.RequestDefinition{
		Name:   name,
		Method: ref.Method,
		URL:    "{{" + openapi.BaseURLVar + "}}" + openapi.ToPlaceholders(ref.Path),
		Auth:   types.AuthConfig{Method: types.AuthInherit},
	}

	for _, param := range openapi.EffectiveParameters(ref.Parameters) {
		if param.Name == "" {
			continue
		}
		switch param.In {
		case oas.ParamInQuery:
			def.QueryParams = append(def.QueryParams, types.QueryParam{
				Key:   param.Name,
				Value: "{{" + param.Name + "}}",
			})
		case oas.ParamInHeader:
			def.Headers = append(def.Headers, param.Name+": {{"+param.Name+"}}")
		}
	}

	// Add Content-Type and an example body if there's a request body
	if rb := ref.Operation.RequestBody; rb != nil && len(rb.Content) > 0 {
		contentType := pickContentType(rb.Content)
		def.Headers = append(def.Headers, "Content-Type: "+contentType)
		def.Body = exampleBody(rb.Content[contentType])
	}

	return def
}

// pickContentType prefers JSON media types, then the lexically first one
func pickContentType(content map[string]*oas.MediaType) string {
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == "application/json" {
			return key
		}
	}
	for _, key := range keys {
		if strings.HasSuffix(key, "+json") || strings.Contains(key, "json") {
			return key
		}
	}
	return keys[0]
}

// nameSet hands out unique request names, ignoring case
type nameSet map[string]bool

func newNameSet() nameSet {
	return make(nameSet)
}

func (s nameSet) claim(name string) string {
	candidate := name
	for n := 2; s[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s-%d", name, n)
	}
	s[strings.ToLower(candidate)] = true
	return candidate
}
