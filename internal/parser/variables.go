package parser

import (
	"regexp"
	"strings"

	"github.com/studiowebux/restsynth/internal/types"
)

// Placeholder pattern: {{varName}} or ${varName}
var varPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}|\$\{([^{}]+)\}`)

// placeholderName returns the trimmed name captured by either syntax
func placeholderName(groups []string) string {
	if groups[1] != "" {
		return strings.TrimSpace(groups[1])
	}
	return strings.TrimSpace(groups[2])
}

// Substitute replaces every {{name}} and ${name} placeholder whose name is
// present in vars. Unknown placeholders are left as they are. Replacement
// text is never scanned again.
func Substitute(template string, vars types.Vars) string {
	if template == "" {
		return ""
	}
	if len(vars) == 0 {
		return template
	}

	return varPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderName(varPattern.FindStringSubmatch(match))
		if value, ok := vars.Lookup(name); ok {
			return value
		}
		return match
	})
}

// FindMissing returns the placeholder names of template that vars does not
// define, deduplicated case-insensitively in order of first appearance.
func FindMissing(template string, vars types.Vars) []string {
	if template == "" {
		return nil
	}

	seen := make(map[string]bool)
	var missing []string
	for _, groups := range varPattern.FindAllStringSubmatch(template, -1) {
		name := placeholderName(groups)
		key := strings.ToLower(name)
		if seen[key] || vars.Has(name) {
			continue
		}
		seen[key] = true
		missing = append(missing, name)
	}
	return missing
}

// SubstituteOrFail substitutes template and fails with a
// *types.MissingVariableError listing every name that vars does not define.
// Missing names are taken from the template itself, so a resolved value that
// happens to contain placeholder syntax is never reported.
func SubstituteOrFail(template string, vars types.Vars) (string, error) {
	if missing := FindMissing(template, vars); len(missing) > 0 {
		return "", types.NewMissingVariableError(missing...)
	}
	return Substitute(template, vars), nil
}

// ExtractVariableNames extracts all unique variable names from a string
// Returns variable names without the surrounding brackets
func ExtractVariableNames(input string) []string {
	return FindMissing(input, nil)
}

// ExtractRequestVariables extracts all unique variable names from request options
// Includes variables from URL, body, query and header fragments
func ExtractRequestVariables(opts types.RequestOptions) []string {
	seen := make(map[string]bool)
	var names []string

	addNames := func(input string) {
		for _, name := range ExtractVariableNames(input) {
			key := strings.ToLower(name)
			if !seen[key] {
				seen[key] = true
				names = append(names, name)
			}
		}
	}

	addNames(opts.URL)
	addNames(opts.Body)
	for _, q := range opts.QueryParameters {
		addNames(q)
	}
	for _, h := range opts.Headers {
		addNames(h)
	}

	return names
}
