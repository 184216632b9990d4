package types

import "strings"

// KeyValue is a single resolved query parameter or header.
// Order is significant and duplicate keys are allowed.
type KeyValue struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// RequestOptions is an abstract request template. Every string field may
// contain {{var}} or ${var} placeholders.
type RequestOptions struct {
	Method string `json:"method" yaml:"method"`
	URL    string `json:"url" yaml:"url"`
	// Body is literal text or an @path file reference
	Body            string   `json:"body,omitempty" yaml:"body,omitempty"`
	QueryParameters []string `json:"query,omitempty" yaml:"query,omitempty"`     // raw key=value fragments
	Headers         []string `json:"headers,omitempty" yaml:"headers,omitempty"` // raw "Name: Value" fragments
}

// RequestData is a fully resolved request, ready to be executed
type RequestData struct {
	Method  string     `json:"method" yaml:"method"`
	URI     string     `json:"uri" yaml:"uri"`
	Headers []KeyValue `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string     `json:"body,omitempty" yaml:"body,omitempty"`
}

// QueryParam is a templated query parameter of a saved request definition
type QueryParam struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// RequestDefinition is a named, persisted request template (a catalog entry)
type RequestDefinition struct {
	Name        string       `json:"name" yaml:"name"`
	Method      string       `json:"method" yaml:"method"`
	URL         string       `json:"url" yaml:"url"`
	Body        string       `json:"body,omitempty" yaml:"body,omitempty"`
	QueryParams []QueryParam `json:"query,omitempty" yaml:"query,omitempty"`
	Headers     []string     `json:"headers,omitempty" yaml:"headers,omitempty"`
	Auth        AuthConfig   `json:"auth" yaml:"auth"`
}

// Options converts the definition into request options.
// Query parameters are rendered back into key=value fragments.
func (d RequestDefinition) Options() RequestOptions {
	query := make([]string, 0, len(d.QueryParams))
	for _, q := range d.QueryParams {
		query = append(query, q.Key+"="+q.Value)
	}

	headers := make([]string, len(d.Headers))
	copy(headers, d.Headers)

	return RequestOptions{
		Method:          d.Method,
		URL:             d.URL,
		Body:            d.Body,
		QueryParameters: query,
		Headers:         headers,
	}
}

// AuthMethod selects how a request authenticates
type AuthMethod string

const (
	// AuthInherit uses the environment default (none when unset)
	AuthInherit AuthMethod = "inherit"
	AuthNone    AuthMethod = "none"
	AuthBasic   AuthMethod = "basic"
	AuthBearer  AuthMethod = "bearer"
	// AuthOAuth2 fetches a token with the client credentials grant
	AuthOAuth2 AuthMethod = "oauth2"
)

// ParseAuthMethod maps user input to an AuthMethod. Unknown or empty
// values map to AuthInherit.
func ParseAuthMethod(s string) AuthMethod {
	switch AuthMethod(strings.ToLower(strings.TrimSpace(s))) {
	case AuthNone:
		return AuthNone
	case AuthBasic:
		return AuthBasic
	case AuthBearer:
		return AuthBearer
	case AuthOAuth2:
		return AuthOAuth2
	default:
		return AuthInherit
	}
}

// AuthConfig is the auth policy of a request definition. All string fields
// are templates resolved against the active variables.
type AuthConfig struct {
	Method       AuthMethod `json:"method" yaml:"method"`
	Username     string     `json:"username,omitempty" yaml:"username,omitempty"`
	Password     string     `json:"password,omitempty" yaml:"password,omitempty"`
	Token        string     `json:"token,omitempty" yaml:"token,omitempty"`
	TokenURL     string     `json:"tokenUrl,omitempty" yaml:"tokenUrl,omitempty"`
	ClientID     string     `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	ClientSecret string     `json:"clientSecret,omitempty" yaml:"clientSecret,omitempty"`
	Scopes       []string   `json:"scopes,omitempty" yaml:"scopes,omitempty"`
}

// RequestResult contains the HTTP response data
type RequestResult struct {
	Status       int               `json:"status" yaml:"status"`
	StatusText   string            `json:"statusText" yaml:"statusText"`
	Headers      map[string]string `json:"headers" yaml:"headers"`
	Body         string            `json:"body" yaml:"body"`
	Duration     int64             `json:"duration" yaml:"duration"`         // milliseconds
	RequestSize  int               `json:"requestSize" yaml:"requestSize"`   // bytes
	ResponseSize int               `json:"responseSize" yaml:"responseSize"` // bytes
	Error        string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// HistoryEntry represents a saved request/response pair
type HistoryEntry struct {
	ID                 int64             `json:"id"`
	Timestamp          string            `json:"timestamp"`
	Environment        string            `json:"environment,omitempty"`
	RequestName        string            `json:"requestName,omitempty"`
	Method             string            `json:"method"`
	URL                string            `json:"url"`
	Headers            []KeyValue        `json:"headers"`
	Body               string            `json:"body,omitempty"`
	ResponseStatus     int               `json:"responseStatus"`
	ResponseStatusText string            `json:"responseStatusText"`
	ResponseHeaders    map[string]string `json:"responseHeaders"`
	ResponseBody       string            `json:"responseBody"`
	Duration           int64             `json:"duration"`
	Error              string            `json:"error,omitempty"`
}
