package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVars_Lookup(t *testing.T) {
	vars := Vars{"token": "lower", "Token": "title", "TOKEN": "caps"}

	for i := 0; i < 10; i++ {
		value, ok := vars.Lookup("tOKEN")
		assert.True(t, ok)
		assert.Equal(t, "caps", value)
	}

	value, ok := vars.Lookup("Token")
	assert.True(t, ok)
	assert.Equal(t, "title", value)

	_, ok = vars.Lookup("missing")
	assert.False(t, ok)
}

func TestVars_Normalize(t *testing.T) {
	normalized, dropped := Vars{"id": "1", "Id": "2", "host": "h"}.Normalize()
	assert.Equal(t, Vars{"Id": "2", "host": "h"}, normalized)
	assert.Equal(t, []string{"id"}, dropped)
}

func TestVars_Merge(t *testing.T) {
	base := Vars{"baseUrl": "https://a", "id": "1"}
	merged := base.Merge(Vars{"BASEURL": "https://b"}, Vars{"token": "t"})

	assert.Equal(t, Vars{"BASEURL": "https://b", "id": "1", "token": "t"}, merged)
	assert.Equal(t, "https://a", base["baseUrl"])
}

func TestVars_Set(t *testing.T) {
	vars := Vars{"Token": "old"}
	vars.Set("token", "new")
	assert.Equal(t, Vars{"token": "new"}, vars)
}
