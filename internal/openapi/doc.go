/*
Package openapi loads OpenAPI 3.x documents and derives request options from
their operations.

Documents are parsed with github.com/erraggy/oastools. The parsed model keeps
paths in a map, so Document records the source order of the paths mapping
and every traversal (operation lookup, catalog derivation) follows it.

BuildRequest resolves one operation against a variable map:
  - base URL from the first server, else the baseUrl variable
  - {name} path markers replaced with path-escaped values
  - query and header parameters emitted only when a variable exists
  - body from {operationId}.body, then body
*/
package openapi
