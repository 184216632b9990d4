/*
Package builder assembles concrete HTTP requests from request templates.

# Pipeline

Builder.Build runs in a fixed order:
  - validate every placeholder of the URL, body, query and header values
  - load the body through a BodyLoader (literal text or @path file)
  - substitute variables into the loaded body
  - parse query and header fragments
  - compose the final URI with BuildURI
  - upper-case the method

Validation is exhaustive: all missing names are reported in one error so the
caller can fix the variable file in a single pass.

# Query Merging

BuildURI merges query parameters by key. A parameter passed in extra
replaces the value already present in the URL instead of being appended.
*/
package builder
