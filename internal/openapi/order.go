package openapi

import (
	"log/slog"

	"gopkg.in/yaml.v3"
)

// pathOrder returns the keys of the top level "paths" mapping in the order
// they appear in data. JSON input is read as YAML.
func pathOrder(data []byte) []string {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		slog.Debug("path order unavailable", "error", err)
		return nil
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}

	paths := mappingValue(root.Content[0], "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return nil
	}

	keys := make([]string, 0, len(paths.Content)/2)
	for i := 0; i+1 < len(paths.Content); i += 2 {
		keys = append(keys, paths.Content[i].Value)
	}
	return keys
}

// mappingValue returns the value node stored under key in a mapping node
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
