package openapi

import (
	"regexp"
	"strings"

	oas "github.com/erraggy/oastools/parser"
)

// OpenAPI template marker: {name}
var templatePattern = regexp.MustCompile(`\{([^{}]+)\}`)

// TemplateNames returns the names of single-brace {name} markers in order.
// Markers that are part of a {{name}} or ${name} placeholder are ignored.
func TemplateNames(template string) []string {
	var names []string
	forEachMarker(template, func(name string, _, _ int) {
		names = append(names, name)
	})
	return names
}

// ToPlaceholders rewrites OpenAPI {name} markers into {{name}} placeholders
func ToPlaceholders(template string) string {
	return ReplaceMarkers(template, func(name string) (string, bool) {
		return "{{" + name + "}}", true
	})
}

// ReplaceMarkers replaces each {name} marker for which fn returns true
func ReplaceMarkers(template string, fn func(name string) (string, bool)) string {
	var sb strings.Builder
	last := 0
	forEachMarker(template, func(name string, start, end int) {
		replacement, ok := fn(name)
		if !ok {
			return
		}
		sb.WriteString(template[last:start])
		sb.WriteString(replacement)
		last = end
	})
	sb.WriteString(template[last:])
	return sb.String()
}

func forEachMarker(template string, fn func(name string, start, end int)) {
	for _, loc := range templatePattern.FindAllStringSubmatchIndex(template, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && (template[start-1] == '{' || template[start-1] == '$') {
			continue
		}
		if end < len(template) && template[end] == '}' {
			continue
		}
		fn(template[loc[2]:loc[3]], start, end)
	}
}

// ServerTemplate returns the server URL with its variables as {{name}}
// placeholders
func ServerTemplate(server *oas.Server) string {
	if server == nil {
		return ""
	}
	return ToPlaceholders(strings.TrimSpace(server.URL))
}

// ServerDefaults returns the declared default of every server variable
func ServerDefaults(server *oas.Server) map[string]string {
	defaults := make(map[string]string)
	if server == nil {
		return defaults
	}
	for name, variable := range server.Variables {
		defaults[name] = variable.Default
	}
	return defaults
}
