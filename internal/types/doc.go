/*
Package types defines the data structures shared by the request pipeline.

# Request Types

RequestOptions:
  - Abstract request template
  - Method, URL, body, raw query and header fragments
  - Every field may carry {{var}} or ${var} placeholders

RequestData:
  - Fully resolved request
  - Absolute URI with merged query string
  - Ordered headers, duplicates allowed

RequestDefinition:
  - Named catalog entry persisted in an environment
  - Converts to RequestOptions via Options
  - Carries an AuthConfig policy

# Variables

Vars is a read-only name/value map with case-insensitive lookup. Variable
files decode entries into VariableValue, which is either a plain string or
a multi-value variable with an active option.

# Errors

Failures are reported through sentinel errors (ErrInvalidURI,
ErrOperationNotFound, ErrFileNotFound, ErrInvalidDocument) wrapped with
context, and through MissingVariableError which lists every unresolved
placeholder and matches ErrMissingVariable.
*/
package types
