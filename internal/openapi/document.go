package openapi

import (
	"net/http"
	"sort"

	oas "github.com/erraggy/oastools/parser"
)

// Methods in traversal order within a path item
var methodOrder = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodHead,
	http.MethodPatch,
	http.MethodTrace,
}

// Document is a read-only view over a parsed OpenAPI 3.x document that
// walks paths in source order.
type Document struct {
	oas   *oas.OAS3Document
	order []string

	// Warnings holds non-fatal problems reported while parsing
	Warnings []string
}

// NewDocument wraps doc. pathOrder lists path keys in traversal order; keys
// it does not mention are visited afterwards in lexical order.
func NewDocument(doc *oas.OAS3Document, pathOrder []string) *Document {
	if doc == nil {
		doc = &oas.OAS3Document{}
	}

	seen := make(map[string]bool, len(doc.Paths))
	order := make([]string, 0, len(doc.Paths))
	for _, path := range pathOrder {
		if _, ok := doc.Paths[path]; ok && !seen[path] {
			seen[path] = true
			order = append(order, path)
		}
	}

	var rest []string
	for path := range doc.Paths {
		if !seen[path] {
			rest = append(rest, path)
		}
	}
	sort.Strings(rest)

	return &Document{oas: doc, order: append(order, rest...)}
}

// Servers returns the document level servers
func (d *Document) Servers() []*oas.Server {
	return d.oas.Servers
}

// PathEntry is one path template with its item
type PathEntry struct {
	Path string
	Item *oas.PathItem
}

// Paths returns path entries in traversal order
func (d *Document) Paths() []PathEntry {
	entries := make([]PathEntry, 0, len(d.order))
	for _, path := range d.order {
		if item := d.oas.Paths[path]; item != nil {
			entries = append(entries, PathEntry{Path: path, Item: item})
		}
	}
	return entries
}

// OperationRef locates one operation of the document
type OperationRef struct {
	Path      string
	Method    string
	Operation *oas.Operation
	// Parameters holds path item parameters followed by operation parameters.
	// Names may repeat.
	Parameters []*oas.Parameter
}

// Operations returns every (path, method) operation in traversal order
func (d *Document) Operations() []OperationRef {
	var ops []OperationRef
	for _, entry := range d.Paths() {
		for _, method := range methodOrder {
			op := operationFor(entry.Item, method)
			if op == nil {
				continue
			}
			params := make([]*oas.Parameter, 0, len(entry.Item.Parameters)+len(op.Parameters))
			params = append(params, nonNil(entry.Item.Parameters)...)
			params = append(params, nonNil(op.Parameters)...)
			ops = append(ops, OperationRef{
				Path:       entry.Path,
				Method:     method,
				Operation:  op,
				Parameters: params,
			})
		}
	}
	return ops
}

func operationFor(item *oas.PathItem, method string) *oas.Operation {
	switch method {
	case http.MethodGet:
		return item.Get
	case http.MethodPut:
		return item.Put
	case http.MethodPost:
		return item.Post
	case http.MethodDelete:
		return item.Delete
	case http.MethodOptions:
		return item.Options
	case http.MethodHead:
		return item.Head
	case http.MethodPatch:
		return item.Patch
	case http.MethodTrace:
		return item.Trace
	}
	return nil
}

func nonNil(params []*oas.Parameter) []*oas.Parameter {
	out := make([]*oas.Parameter, 0, len(params))
	for _, p := range params {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
