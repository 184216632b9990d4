package builder

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/studiowebux/restsynth/internal/parser"
	"github.com/studiowebux/restsynth/internal/types"
)

// Builder turns request options into a concrete request
type Builder struct {
	body BodyLoader
}

// New creates a Builder. A nil loader falls back to FileBodyLoader.
func New(body BodyLoader) *Builder {
	if body == nil {
		body = FileBodyLoader{}
	}
	return &Builder{body: body}
}

// Build validates opts against vars and resolves it into RequestData.
//
// Every placeholder in the URL, the body and the value half of each query
// and header fragment is checked before anything else happens. When any is
// unresolved the returned *types.MissingVariableError lists all of them and
// the body file is never read.
func (b *Builder) Build(opts types.RequestOptions, vars types.Vars) (types.RequestData, error) {
	if missing := MissingVariables(opts, vars); len(missing) > 0 {
		return types.RequestData{}, types.NewMissingVariableError(missing...)
	}

	body, err := b.body.Load(opts.Body)
	if err != nil {
		return types.RequestData{}, fmt.Errorf("failed to load body: %w", err)
	}

	// The loaded file may carry placeholders of its own
	body, err = parser.SubstituteOrFail(body, vars)
	if err != nil {
		return types.RequestData{}, fmt.Errorf("failed to resolve body: %w", err)
	}

	query := parser.ParseQuery(opts.QueryParameters, vars)
	headers := parser.ParseHeaders(opts.Headers, vars)

	uri, err := BuildURI(opts.URL, vars, query)
	if err != nil {
		return types.RequestData{}, err
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = "GET"
	}

	slog.Debug("request synthesized", "method", method, "uri", uri, "headers", len(headers))

	return types.RequestData{
		Method:  method,
		URI:     uri,
		Headers: headers,
		Body:    body,
	}, nil
}

// MissingVariables returns every unresolved placeholder name in opts,
// deduplicated case-insensitively. Fragments without a usable separator are
// ignored since they are skipped during parsing anyway.
func MissingVariables(opts types.RequestOptions, vars types.Vars) []string {
	var missing []string
	missing = append(missing, parser.FindMissing(opts.URL, vars)...)
	missing = append(missing, parser.FindMissing(opts.Body, vars)...)

	for _, fragment := range opts.QueryParameters {
		if _, value, ok := parser.SplitFragment(fragment, "="); ok {
			missing = append(missing, parser.FindMissing(value, vars)...)
		}
	}
	for _, fragment := range opts.Headers {
		if _, value, ok := parser.SplitFragment(fragment, ":"); ok {
			missing = append(missing, parser.FindMissing(value, vars)...)
		}
	}

	if len(missing) == 0 {
		return nil
	}
	return types.NewMissingVariableError(missing...).Names
}
