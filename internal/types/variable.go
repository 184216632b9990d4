package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// VariableValue is a variable file entry: either a plain string or a
// multi-value variable with one active option.
type VariableValue struct {
	StringValue *string
	MultiValue  *MultiValueVariable
}

// MultiValueVariable represents a variable with multiple options
type MultiValueVariable struct {
	Options     []string `json:"options" yaml:"options"`
	Active      int      `json:"active" yaml:"active"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

var errVariableShape = errors.New("variable value must be either a string or a multi-value object")

// UnmarshalJSON handles both string values and multi-value objects
func (v *VariableValue) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		v.SetValue(str)
		return nil
	}

	var mv MultiValueVariable
	if err := json.Unmarshal(data, &mv); err == nil && len(mv.Options) > 0 {
		v.StringValue = nil
		v.MultiValue = &mv
		return nil
	}

	return errVariableShape
}

// MarshalJSON implements custom JSON marshaling for VariableValue
func (v VariableValue) MarshalJSON() ([]byte, error) {
	if v.MultiValue != nil {
		return json.Marshal(v.MultiValue)
	}
	return json.Marshal(v.GetValue())
}

// UnmarshalYAML handles both scalar values and multi-value mappings
func (v *VariableValue) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err == nil {
		v.SetValue(str)
		return nil
	}

	var mv MultiValueVariable
	if err := unmarshal(&mv); err == nil && len(mv.Options) > 0 {
		v.StringValue = nil
		v.MultiValue = &mv
		return nil
	}

	return errVariableShape
}

// MarshalYAML implements custom YAML marshaling for VariableValue
func (v VariableValue) MarshalYAML() (interface{}, error) {
	if v.MultiValue != nil {
		return v.MultiValue, nil
	}
	return v.GetValue(), nil
}

// GetValue returns the string value for the variable.
// For multi-value variables it returns the active option, or an empty
// string when the active index is out of bounds (use Validate to check).
func (v *VariableValue) GetValue() string {
	if v.StringValue != nil {
		return *v.StringValue
	}
	if v.MultiValue != nil && v.MultiValue.Active >= 0 && v.MultiValue.Active < len(v.MultiValue.Options) {
		return v.MultiValue.Options[v.MultiValue.Active]
	}
	return ""
}

// Validate checks that a multi-value variable points at an existing option
func (v *VariableValue) Validate(varName string) error {
	if v.MultiValue == nil {
		return nil
	}
	if v.MultiValue.Active < 0 || v.MultiValue.Active >= len(v.MultiValue.Options) {
		return fmt.Errorf("variable '%s': active index %d is out of bounds (have %d options)",
			varName, v.MultiValue.Active, len(v.MultiValue.Options))
	}
	return nil
}

// SetValue sets the string value for the variable
func (v *VariableValue) SetValue(value string) {
	v.StringValue = &value
	v.MultiValue = nil
}

// IsMultiValue returns true if this is a multi-value variable
func (v *VariableValue) IsMultiValue() bool {
	return v.MultiValue != nil
}
