package converter

import (
	"encoding/json"
	"fmt"
	"strings"

	oas "github.com/erraggy/oastools/parser"

	"github.com/studiowebux/restsynth/internal/openapi"
	"github.com/studiowebux/restsynth/internal/types"
)

// DeriveVariables builds a variable skeleton for doc: baseUrl from the first
// server, every server variable with its default, every path template name
// and every parameter name with its default or example. Values found later
// never replace a non-blank value seeded earlier.
func DeriveVariables(doc *openapi.Document) types.Vars {
	vars := types.Vars{}

	var server *oas.Server
	if servers := doc.Servers(); len(servers) > 0 {
		server = servers[0]
	}
	seed(vars, openapi.BaseURLVar, openapi.ServerTemplate(server))
	for name, def := range openapi.ServerDefaults(server) {
		seed(vars, name, def)
	}

	for _, entry := range doc.Paths() {
		for _, name := range openapi.TemplateNames(entry.Path) {
			seed(vars, name, "")
		}
	}

	for _, ref := range doc.Operations() {
		for _, param := range ref.Parameters {
			if param.Name == "" {
				continue
			}
			seed(vars, param.Name, parameterDefault(param))
		}
	}

	return vars
}

// seed stores value under name unless a non-blank value is already present.
// Keys are compared without case.
func seed(vars types.Vars, name, value string) {
	name = strings.TrimSpace(name)
	if name == "" || vars.HasValue(name) {
		return
	}
	for key := range vars {
		if strings.EqualFold(key, name) {
			if value != "" {
				vars[key] = value
			}
			return
		}
	}
	vars[name] = value
}

// parameterDefault returns the schema default or example of a parameter
func parameterDefault(param *oas.Parameter) string {
	candidates := []any{param.Example, param.Default}
	if param.Schema != nil {
		candidates = append([]any{param.Schema.Default, param.Schema.Example}, candidates...)
		if len(param.Schema.Examples) > 0 {
			candidates = append(candidates, param.Schema.Examples[0])
		}
	}

	for _, candidate := range candidates {
		if candidate != nil {
			return formatValue(candidate)
		}
	}
	return ""
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool, int, int64, float64, float32, uint64:
		return fmt.Sprint(v)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}
