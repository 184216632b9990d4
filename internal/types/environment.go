package types

import "strings"

// SourceKind tells how an OpenAPI source value is interpreted
type SourceKind string

const (
	SourceURL  SourceKind = "url"
	SourceFile SourceKind = "file"
	SourceRaw  SourceKind = "raw"
)

// OpenAPISource locates an OpenAPI document
type OpenAPISource struct {
	Kind  SourceKind `json:"kind" yaml:"kind"`
	Value string     `json:"value" yaml:"value"`
}

// EnvironmentConfig is a named environment: a variable file, an optional
// default OpenAPI document and the saved request catalog.
type EnvironmentConfig struct {
	Name        string              `json:"name" yaml:"name"`
	VarsPath    string              `json:"varsPath" yaml:"varsPath"`
	DefaultSpec *OpenAPISource      `json:"defaultSpec,omitempty" yaml:"defaultSpec,omitempty"`
	DefaultAuth *AuthConfig         `json:"defaultAuth,omitempty" yaml:"defaultAuth,omitempty"`
	Requests    []RequestDefinition `json:"requests,omitempty" yaml:"requests,omitempty"`
}

// FindRequest returns the saved request with the given name, ignoring case
func (e *EnvironmentConfig) FindRequest(name string) (*RequestDefinition, bool) {
	for i := range e.Requests {
		if strings.EqualFold(e.Requests[i].Name, name) {
			return &e.Requests[i], true
		}
	}
	return nil, false
}
