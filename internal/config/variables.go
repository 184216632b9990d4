package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restsynth/internal/types"
)

// variableFile is the on-disk shape of YAML and JSON variable files
type variableFile struct {
	Variables map[string]types.VariableValue `json:"variables" yaml:"variables"`
}

// IsDotEnv reports whether path names a .env style file
func IsDotEnv(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return base == ".env" || strings.HasPrefix(base, ".env.") || strings.HasSuffix(base, ".env")
}

// LoadVariables reads a variable file. YAML and JSON files hold a
// "variables" mapping whose values are strings or multi-value objects;
// .env files are read with godotenv. Blank keys are dropped. An empty path
// yields an empty map.
func LoadVariables(path string) (types.Vars, error) {
	vars := types.Vars{}
	if strings.TrimSpace(path) == "" {
		return vars, nil
	}

	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("variables file %s: %w", path, types.ErrFileNotFound)
		}
		return nil, fmt.Errorf("failed to stat variables file: %w", err)
	}

	if IsDotEnv(path) {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse env file %s: %w", path, err)
		}
		for key, value := range values {
			if strings.TrimSpace(key) != "" {
				vars[key] = value
			}
		}
		return normalizeKeys(path, vars), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variables file: %w", err)
	}

	var file variableFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse variables file %s: %w", path, err)
	}

	for key, value := range file.Variables {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if err := value.Validate(key); err != nil {
			return nil, err
		}
		vars[key] = value.GetValue()
	}

	return normalizeKeys(path, vars), nil
}

// normalizeKeys keeps one key per case-insensitive name, the one sorting
// first
func normalizeKeys(path string, vars types.Vars) types.Vars {
	normalized, dropped := vars.Normalize()
	for _, key := range dropped {
		slog.Warn("ignoring variable that differs from another only in case", "file", path, "name", key)
	}
	return normalized
}

// SaveVariables writes vars to path in the format chosen by its name:
// .env, .json, or YAML otherwise. Keys that godotenv cannot read back
// are left out of .env files.
func SaveVariables(path string, vars types.Vars) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var data []byte
	var err error
	switch {
	case IsDotEnv(path):
		env := make(map[string]string, len(vars))
		for key, value := range vars {
			if !validEnvKey(key) {
				slog.Debug("skipping variable not representable in .env", "name", key)
				continue
			}
			env[key] = value
		}
		var content string
		content, err = godotenv.Marshal(env)
		data = []byte(content + "\n")

	case strings.EqualFold(filepath.Ext(path), ".json"):
		data, err = json.MarshalIndent(toFile(vars), "", "  ")

	default:
		data, err = yaml.Marshal(toFile(vars))
	}
	if err != nil {
		return fmt.Errorf("failed to encode variables: %w", err)
	}

	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write variables file: %w", err)
	}
	return nil
}

// VariableNames returns the keys of vars sorted without case
func VariableNames(vars types.Vars) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

func toFile(vars types.Vars) variableFile {
	file := variableFile{Variables: make(map[string]types.VariableValue, len(vars))}
	for key, value := range vars {
		var v types.VariableValue
		v.SetValue(value)
		file.Variables[key] = v
	}
	return file
}

// validEnvKey matches the key characters godotenv accepts
func validEnvKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
