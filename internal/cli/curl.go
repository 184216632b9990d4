package cli

import (
	"strings"

	"github.com/studiowebux/restsynth/internal/types"
)

// ToCurl renders a request as a single-line curl command
func ToCurl(data types.RequestData) string {
	parts := []string{"curl"}

	method := strings.ToUpper(data.Method)
	if method != "" && method != "GET" {
		parts = append(parts, "-X", method)
	}
	parts = append(parts, shellQuote(data.URI))

	for _, h := range data.Headers {
		parts = append(parts, "-H", shellQuote(h.Key+": "+h.Value))
	}
	if data.Body != "" {
		parts = append(parts, "--data-raw", shellQuote(data.Body))
	}

	return strings.Join(parts, " ")
}

// shellQuote wraps s in single quotes for POSIX shells
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
