package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersBody = `{"users":[{"name":"ann","active":true},{"name":"bob","active":false}],"total":2}`

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		expected   string
	}{
		{"empty expression", "", usersBody},
		{"projection", "users[].name", "[\n  \"ann\",\n  \"bob\"\n]"},
		{"filter", "users[?active].name | [0]", "ann"},
		{"number", "total", "2"},
		{"missing field", "nope", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(usersBody, tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestApply_Errors(t *testing.T) {
	_, err := Apply("not json", "a")
	assert.ErrorContains(t, err, "not valid JSON")

	_, err = Apply(usersBody, "users[")
	assert.ErrorContains(t, err, "invalid JMESPath")
}

func TestIsValidJMESPath(t *testing.T) {
	assert.True(t, IsValidJMESPath("a.b[0]"))
	assert.False(t, IsValidJMESPath("a.["))
}
