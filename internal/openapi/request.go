package openapi

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	oas "github.com/erraggy/oastools/parser"

	"github.com/studiowebux/restsynth/internal/parser"
	"github.com/studiowebux/restsynth/internal/types"
)

// BaseURLVar names the variable used when the document declares no server
const BaseURLVar = "baseUrl"

// BodyVar is the generic request body variable. {operationId}.body takes
// precedence over it.
const BodyVar = "body"

// BuildRequest derives request options for the operation identified by
// operationID.
//
// Path, query and header parameters are resolved from vars. A required
// parameter or required body with no variable fails with a
// *types.MissingVariableError naming every such value. Optional ones are
// omitted; an optional path marker with no variable stays as {name}.
func BuildRequest(doc *Document, operationID string, vars types.Vars) (types.RequestOptions, error) {
	ref, err := FindOperation(doc, operationID)
	if err != nil {
		return types.RequestOptions{}, err
	}

	var missing []string

	baseURL, baseMissing := resolveBaseURL(doc, vars)
	missing = append(missing, baseMissing...)

	params := EffectiveParameters(ref.Parameters)

	path, pathMissing := resolvePath(ref.Path, params, vars)
	missing = append(missing, pathMissing...)

	query, queryMissing := resolveParameters(params, oas.ParamInQuery, "%s=%s", vars)
	missing = append(missing, queryMissing...)

	headers, headerMissing := resolveParameters(params, oas.ParamInHeader, "%s: %s", vars)
	missing = append(missing, headerMissing...)

	body, bodyMissing := resolveBody(ref.Operation, vars)
	missing = append(missing, bodyMissing...)

	if len(missing) > 0 {
		return types.RequestOptions{}, types.NewMissingVariableError(missing...)
	}

	combined, err := joinBaseAndPath(baseURL, path)
	if err != nil {
		return types.RequestOptions{}, err
	}

	finalURL, err := parser.SubstituteOrFail(combined, vars)
	if err != nil {
		return types.RequestOptions{}, err
	}

	slog.Debug("derived request from operation",
		"operationId", ref.Operation.OperationID,
		"method", ref.Method,
		"url", finalURL)

	return types.RequestOptions{
		Method:          ref.Method,
		URL:             finalURL,
		Body:            body,
		QueryParameters: query,
		Headers:         headers,
	}, nil
}

// resolveBaseURL picks the first server URL, then the baseUrl variable.
// Server variables missing from vars fall back to their declared default.
func resolveBaseURL(doc *Document, vars types.Vars) (string, []string) {
	servers := doc.Servers()
	if len(servers) == 0 || servers[0] == nil || strings.TrimSpace(servers[0].URL) == "" {
		if value, ok := vars.Lookup(BaseURLVar); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), nil
		}
		return "", nil
	}

	server := servers[0]
	effective := types.Vars{}
	for name, def := range ServerDefaults(server) {
		if !vars.Has(name) {
			effective[name] = def
		}
	}
	effective = effective.Merge(vars)

	template := ServerTemplate(server)
	if missing := parser.FindMissing(template, effective); len(missing) > 0 {
		return "", missing
	}
	resolved := parser.Substitute(template, effective)

	// Relative server URLs such as /api/v3 hang off baseUrl when it is set
	if strings.HasPrefix(resolved, "/") {
		if value, ok := vars.Lookup(BaseURLVar); ok && strings.TrimSpace(value) != "" {
			resolved = strings.TrimRight(strings.TrimSpace(value), "/") + resolved
		}
	}
	return resolved, nil
}

// EffectiveParameters drops earlier parameters that a later one with the
// same name and location overrides, so operation parameters win over path
// item parameters.
func EffectiveParameters(params []*oas.Parameter) []*oas.Parameter {
	last := make(map[string]int, len(params))
	for i, p := range params {
		last[paramKey(p)] = i
	}

	out := make([]*oas.Parameter, 0, len(last))
	for i, p := range params {
		if last[paramKey(p)] == i {
			out = append(out, p)
		}
	}
	return out
}

func paramKey(p *oas.Parameter) string {
	return strings.ToLower(p.In) + "\x00" + strings.ToLower(p.Name)
}

func resolvePath(template string, params []*oas.Parameter, vars types.Vars) (string, []string) {
	var missing []string
	resolved := ReplaceMarkers(template, func(name string) (string, bool) {
		if value, ok := vars.Lookup(name); ok {
			return url.PathEscape(value), true
		}
		if isRequired(params, oas.ParamInPath, name) {
			missing = append(missing, name)
		}
		return "", false
	})
	return resolved, missing
}

func isRequired(params []*oas.Parameter, in, name string) bool {
	for _, p := range params {
		if p.In == in && strings.EqualFold(p.Name, name) && p.Required {
			return true
		}
	}
	return false
}

func resolveParameters(params []*oas.Parameter, in, format string, vars types.Vars) ([]string, []string) {
	var fragments, missing []string
	for _, p := range params {
		if p.In != in || p.Name == "" {
			continue
		}
		if value, ok := vars.Lookup(p.Name); ok {
			fragments = append(fragments, fmt.Sprintf(format, p.Name, parser.Substitute(value, vars)))
		} else if p.Required {
			missing = append(missing, p.Name)
		}
	}
	return fragments, missing
}

func resolveBody(op *oas.Operation, vars types.Vars) (string, []string) {
	if op.RequestBody == nil {
		return "", nil
	}

	if op.OperationID != "" {
		if value, ok := vars.Lookup(op.OperationID + "." + BodyVar); ok {
			return parser.Substitute(value, vars), nil
		}
	}
	if value, ok := vars.Lookup(BodyVar); ok {
		return parser.Substitute(value, vars), nil
	}
	if op.RequestBody.Required {
		return "", []string{BodyVar}
	}
	return "", nil
}

// joinBaseAndPath joins with exactly one slash. Without a base URL the path
// must already be absolute.
func joinBaseAndPath(base, path string) (string, error) {
	if strings.TrimSpace(base) == "" {
		if u, err := url.Parse(path); err == nil && u.Scheme != "" && u.Host != "" {
			return path, nil
		}
		return "", fmt.Errorf("%w: no server URL and no %s variable", types.ErrInvalidDocument, BaseURLVar)
	}

	if path == "" {
		return base, nil
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/"), nil
}
