package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/restsynth/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), FilePermissions))
	return path
}

func TestInitializeAt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")

	require.NoError(t, InitializeAt(dir))

	assert.Equal(t, dir, ConfigDir)
	assert.DirExists(t, EnvironmentsDir)
	assert.Equal(t, filepath.Join(dir, "history.db"), DatabasePath)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), SettingsFile)
}

func TestInitialize_HomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnvVar, dir)

	require.NoError(t, Initialize())
	assert.Equal(t, dir, ConfigDir)
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		require.NoError(t, InitializeAt(t.TempDir()))

		s, err := LoadSettings("")
		require.NoError(t, err)
		assert.Equal(t, Settings{Output: OutputText, Timeout: 30 * time.Second, History: true}, s)
	})

	t.Run("file and env", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "settings.yaml", "default_env: staging\noutput: JSON\ntimeout: 5s\n")
		t.Setenv("RESTSYNTH_HISTORY", "false")

		s, err := LoadSettings(path)
		require.NoError(t, err)
		assert.Equal(t, "staging", s.DefaultEnv)
		assert.Equal(t, OutputJSON, s.Output)
		assert.Equal(t, 5*time.Second, s.Timeout)
		assert.False(t, s.History)
	})

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad output", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "settings.yaml", "output: xml\n")
		_, err := LoadSettings(path)
		assert.ErrorContains(t, err, "invalid output format")
	})
}

func TestLoadVariables(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml with multi-value", func(t *testing.T) {
		path := writeFile(t, dir, "vars.yaml", `variables:
  host: api.local
  env:
    options: [dev, prod]
    active: 1
  "  ": dropped
`)
		vars, err := LoadVariables(path)
		require.NoError(t, err)
		assert.Equal(t, types.Vars{"host": "api.local", "env": "prod"}, vars)
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, dir, "vars.json", `{"variables": {"id": "42"}}`)
		vars, err := LoadVariables(path)
		require.NoError(t, err)
		assert.Equal(t, types.Vars{"id": "42"}, vars)
	})

	t.Run("dotenv", func(t *testing.T) {
		path := writeFile(t, dir, ".env", "TOKEN=abc\n# comment\nHOST=\"h.local\"\n")
		vars, err := LoadVariables(path)
		require.NoError(t, err)
		assert.Equal(t, types.Vars{"TOKEN": "abc", "HOST": "h.local"}, vars)
	})

	t.Run("keys differing only in case", func(t *testing.T) {
		path := writeFile(t, dir, "dupes.env", "token=lower\nToken=upper\nTOKEN=caps\n")
		for i := 0; i < 5; i++ {
			vars, err := LoadVariables(path)
			require.NoError(t, err)
			assert.Equal(t, types.Vars{"TOKEN": "caps"}, vars)
		}
	})

	t.Run("active out of range", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "variables:\n  env:\n    options: [a]\n    active: 3\n")
		_, err := LoadVariables(path)
		assert.ErrorContains(t, err, "out of bounds")
	})

	t.Run("empty path", func(t *testing.T) {
		vars, err := LoadVariables("")
		require.NoError(t, err)
		assert.Empty(t, vars)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadVariables(filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, types.ErrFileNotFound)
	})
}

func TestSaveVariables(t *testing.T) {
	vars := types.Vars{"baseUrl": "https://{{env}}.io", "X-Tenant": "acme", "price": "$5"}

	t.Run("yaml round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "vars.yaml")
		require.NoError(t, SaveVariables(path, vars))

		loaded, err := LoadVariables(path)
		require.NoError(t, err)
		assert.Equal(t, vars, loaded)
	})

	t.Run("dotenv drops unreadable keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, SaveVariables(path, vars))

		loaded, err := LoadVariables(path)
		require.NoError(t, err)
		assert.Equal(t, types.Vars{"baseUrl": "https://{{env}}.io", "price": "$5"}, loaded)
	})
}

func TestVariableNames(t *testing.T) {
	assert.Equal(t, []string{"a", "B", "c"}, VariableNames(types.Vars{"c": "", "a": "", "B": ""}))
}

func TestIsDotEnv(t *testing.T) {
	assert.True(t, IsDotEnv("/x/.env"))
	assert.True(t, IsDotEnv(".env.local"))
	assert.True(t, IsDotEnv("prod.env"))
	assert.False(t, IsDotEnv("vars.yaml"))
}
