package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/restsynth/internal/types"
	"gopkg.in/yaml.v3"
)

// File formats recognised by DetectFormat
const (
	FormatOpenAPI = "openapi"
	FormatYAML    = "yaml"
	FormatJSON    = "json"
)

// ParseDefinitionsFile parses a YAML or JSON file containing request definitions
func ParseDefinitionsFile(filePath string) ([]types.RequestDefinition, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if IsOpenAPISpec(data) {
		return nil, fmt.Errorf("%s is an OpenAPI document, use the catalog command instead", filePath)
	}

	if strings.ToLower(filepath.Ext(filePath)) == ".json" {
		return parseJSON(data)
	}

	// YAML also handles JSON
	return parseYAML(data)
}

// parseJSON parses JSON format
func parseJSON(data []byte) ([]types.RequestDefinition, error) {
	var defs []types.RequestDefinition
	if err := json.Unmarshal(data, &defs); err == nil {
		return normalize(defs), nil
	}

	var def types.RequestDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return normalize([]types.RequestDefinition{def}), nil
}

// parseYAML parses YAML format
func parseYAML(data []byte) ([]types.RequestDefinition, error) {
	var defs []types.RequestDefinition
	if err := yaml.Unmarshal(data, &defs); err == nil {
		// An empty document also unmarshals into a nil slice
		if len(defs) > 0 || strings.TrimSpace(string(data)) == "[]" {
			return normalize(defs), nil
		}
	}

	var def types.RequestDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if def.URL == "" {
		return nil, fmt.Errorf("failed to parse YAML: request definition has no url")
	}

	return normalize([]types.RequestDefinition{def}), nil
}

// normalize fills defaults that files are allowed to omit
func normalize(defs []types.RequestDefinition) []types.RequestDefinition {
	for i := range defs {
		if defs[i].Method == "" {
			defs[i].Method = "GET"
		}
		defs[i].Method = strings.ToUpper(defs[i].Method)
		defs[i].Auth.Method = types.ParseAuthMethod(string(defs[i].Auth.Method))
		if defs[i].Name == "" {
			defs[i].Name = fmt.Sprintf("request-%d", i+1)
		}
	}
	return defs
}

// IsOpenAPISpec checks if the data is an OpenAPI specification
func IsOpenAPISpec(data []byte) bool {
	var probe struct {
		OpenAPI string `json:"openapi" yaml:"openapi"`
		Swagger string `json:"swagger" yaml:"swagger"`
	}

	// YAML also handles JSON
	if err := yaml.Unmarshal(data, &probe); err == nil {
		return probe.OpenAPI != "" || probe.Swagger != ""
	}
	return false
}

// DetectFormat detects whether a file holds an OpenAPI document or request definitions
func DetectFormat(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if IsOpenAPISpec(data) {
		return FormatOpenAPI, nil
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}

	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
		return FormatJSON, nil
	}
	return FormatYAML, nil
}
