package converter

import (
	"encoding/json"
	"fmt"
	"sort"

	oas "github.com/erraggy/oastools/parser"
)

// Nesting limit when generating examples from recursive schemas
const maxExampleDepth = 8

// exampleBody renders the example of a media type: the declared example,
// the first named example, else one generated from the schema.
func exampleBody(media *oas.MediaType) string {
	if media == nil {
		return ""
	}

	var example any
	switch {
	case media.Example != nil:
		example = media.Example
	case len(media.Examples) > 0:
		keys := make([]string, 0, len(media.Examples))
		for key := range media.Examples {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		if ex := media.Examples[keys[0]]; ex != nil {
			example = ex.Value
		}
	case media.Schema != nil:
		example = generateExampleFromSchema(media.Schema, 0)
	}

	if example == nil {
		return ""
	}
	if text, ok := example.(string); ok {
		return text
	}

	data, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// generateExampleFromSchema builds a sample value for schema. Declared
// example, default, examples and enum values are preferred over type
// placeholders.
func generateExampleFromSchema(schema *oas.Schema, depth int) any {
	if schema == nil || depth > maxExampleDepth {
		return nil
	}

	if schema.Example != nil {
		return schema.Example
	}
	if schema.Default != nil {
		return schema.Default
	}
	if len(schema.Examples) > 0 {
		return schema.Examples[0]
	}
	if len(schema.Enum) > 0 {
		return schema.Enum[0]
	}

	if len(schema.AllOf) > 0 {
		merged := make(map[string]any)
		for _, sub := range schema.AllOf {
			if part, ok := generateExampleFromSchema(sub, depth+1).(map[string]any); ok {
				for key, value := range part {
					merged[key] = value
				}
			}
		}
		return merged
	}
	for _, alternatives := range [][]*oas.Schema{schema.OneOf, schema.AnyOf} {
		if len(alternatives) > 0 {
			return generateExampleFromSchema(alternatives[0], depth+1)
		}
	}

	switch schemaType(schema) {
	case "object":
		result := make(map[string]any)
		for key, propSchema := range schema.Properties {
			result[key] = generateExampleFromSchema(propSchema, depth+1)
		}
		return result

	case "array":
		if items, ok := schema.Items.(*oas.Schema); ok {
			return []any{generateExampleFromSchema(items, depth+1)}
		}
		return []any{}

	case "string":
		switch schema.Format {
		case "date-time":
			return "2024-01-01T00:00:00Z"
		case "date":
			return "2024-01-01"
		case "uuid":
			return "00000000-0000-0000-0000-000000000000"
		case "email":
			return "user@example.com"
		}
		return "string"

	case "integer", "number":
		return 0

	case "boolean":
		return false

	default:
		return nil
	}
}

// schemaType returns the schema type, reading the first non-null entry of a
// 3.1 type list. Schemas with properties and no type are objects.
func schemaType(schema *oas.Schema) string {
	switch t := schema.Type.(type) {
	case string:
		return t
	case []string:
		for _, s := range t {
			if s != "null" {
				return s
			}
		}
	case []any:
		for _, s := range t {
			if str := fmt.Sprint(s); str != "null" {
				return str
			}
		}
	}
	if len(schema.Properties) > 0 {
		return "object"
	}
	return ""
}
