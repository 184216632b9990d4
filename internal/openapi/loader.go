package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	oas "github.com/erraggy/oastools/parser"
	"github.com/hashicorp/go-multierror"

	"github.com/studiowebux/restsynth/internal/types"
)

// Size limit for documents fetched over HTTP
const maxDocumentSize = 10 << 20

// Loader reads OpenAPI documents from URLs, files or raw text
type Loader struct {
	// HTTPClient is used for url sources. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	// Strict turns structural validation problems into errors instead of warnings
	Strict bool
}

// Load reads and parses the document described by src
func (l *Loader) Load(ctx context.Context, src types.OpenAPISource) (*Document, error) {
	value := strings.TrimSpace(src.Value)
	if value == "" {
		return nil, fmt.Errorf("%w: OpenAPI source is empty", types.ErrInvalidDocument)
	}

	var data []byte
	var err error
	switch src.Kind {
	case types.SourceURL:
		data, err = l.fetch(ctx, value)
	case types.SourceFile:
		data, err = readFile(value)
	case types.SourceRaw:
		data = []byte(src.Value)
	default:
		err = fmt.Errorf("%w: unknown source kind %q", types.ErrInvalidDocument, src.Kind)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("loading OpenAPI document", "kind", src.Kind, "bytes", len(data))
	return Parse(data, l.Strict)
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	client := l.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid document URL %q: %v", types.ErrInvalidDocument, rawURL, err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download OpenAPI document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: downloading %s returned %s", types.ErrInvalidDocument, rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: OpenAPI file not found: %s", types.ErrInvalidDocument, path)
		}
		return nil, fmt.Errorf("failed to read OpenAPI file: %w", err)
	}
	return data, nil
}

// Parse parses an OpenAPI 3.x document from YAML or JSON. Structural
// problems are kept as warnings unless strict is set, in which case they are
// returned together as one error.
func Parse(data []byte, strict bool) (*Document, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%w: OpenAPI content is empty", types.ErrInvalidDocument)
	}

	result, err := oas.ParseWithOptions(
		oas.WithBytes(data),
		oas.WithResolveRefs(true),
		oas.WithSourceName("openapi"),
		oas.WithLogger(oas.NewSlogAdapter(slog.Default())),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidDocument, err)
	}

	doc, ok := result.OAS3Document()
	if !ok {
		return nil, fmt.Errorf("%w: unsupported OpenAPI version %q (only 3.x is supported)", types.ErrInvalidDocument, result.Version)
	}

	var problems *multierror.Error
	for _, parseErr := range result.Errors {
		problems = multierror.Append(problems, parseErr)
	}
	if strict && problems.ErrorOrNil() != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidDocument, problems)
	}

	document := NewDocument(doc, pathOrder(data))
	if problems != nil {
		for _, problem := range problems.Errors {
			document.Warnings = append(document.Warnings, problem.Error())
		}
	}
	document.Warnings = append(document.Warnings, result.Warnings...)

	slog.Debug("parsed OpenAPI document",
		"version", result.Version,
		"paths", len(doc.Paths),
		"warnings", len(document.Warnings))

	return document, nil
}
