package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restsynth/internal/types"
)

const (
	environmentFileName = "environment.yaml"
	varsFileName        = "vars.yaml"
	currentFileName     = ".current"
)

// ErrEnvironmentNotFound is returned when a named environment does not exist
var ErrEnvironmentNotFound = errors.New("environment not found")

var environmentNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateEnvironmentName rejects names that cannot be used as a directory
func ValidateEnvironmentName(name string) error {
	if !environmentNamePattern.MatchString(name) {
		return fmt.Errorf("invalid environment name %q: use letters, digits, '.', '_' or '-'", name)
	}
	return nil
}

// Store persists named environments below a root directory, one
// sub-directory per environment:
//
//	<root>/<name>/environment.yaml
//	<root>/<name>/vars.yaml
//	<root>/<name>/spec.<ext>     (file spec sources only)
type Store struct {
	root string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Dir returns the directory of the named environment
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

// Save writes cfg. The variable file and a file spec source are copied into
// the environment directory; an empty variable file is created when none
// is given.
func (s *Store) Save(cfg *types.EnvironmentConfig) error {
	if err := ValidateEnvironmentName(cfg.Name); err != nil {
		return err
	}

	dir := s.Dir(cfg.Name)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create environment directory: %w", err)
	}

	varsPath, err := s.storeVars(dir, cfg.VarsPath)
	if err != nil {
		return err
	}

	persisted := *cfg
	persisted.VarsPath = filepath.Base(varsPath)

	if spec := cfg.DefaultSpec; spec != nil && spec.Kind == types.SourceFile {
		target := filepath.Join(dir, "spec"+filepath.Ext(spec.Value))
		if err := copyFile(spec.Value, target); err != nil {
			return fmt.Errorf("failed to store spec file: %w", err)
		}
		persisted.DefaultSpec = &types.OpenAPISource{Kind: types.SourceFile, Value: filepath.Base(target)}
	}

	data, err := yaml.Marshal(&persisted)
	if err != nil {
		return fmt.Errorf("failed to encode environment: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, environmentFileName), data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write environment: %w", err)
	}

	cfg.VarsPath = varsPath
	if persisted.DefaultSpec != nil && persisted.DefaultSpec.Kind == types.SourceFile {
		cfg.DefaultSpec = &types.OpenAPISource{Kind: types.SourceFile, Value: filepath.Join(dir, persisted.DefaultSpec.Value)}
	}
	return nil
}

func (s *Store) storeVars(dir, source string) (string, error) {
	target := filepath.Join(dir, varsFileName)
	if source != "" {
		source, err := ExpandPath(source)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(source); err != nil {
			return "", fmt.Errorf("variables file %s: %w", source, types.ErrFileNotFound)
		}
		if IsDotEnv(source) {
			vars, err := LoadVariables(source)
			if err != nil {
				return "", err
			}
			return target, SaveVariables(target, vars)
		}
		return target, copyFile(source, target)
	}

	if _, err := os.Stat(target); os.IsNotExist(err) {
		if err := os.WriteFile(target, []byte("variables: {}\n"), FilePermissions); err != nil {
			return "", fmt.Errorf("failed to create variables file: %w", err)
		}
	}
	return target, nil
}

// Get loads the named environment. Relative paths inside it are resolved
// against the environment directory.
func (s *Store) Get(name string) (*types.EnvironmentConfig, error) {
	if err := ValidateEnvironmentName(name); err != nil {
		return nil, err
	}

	dir := s.Dir(name)
	data, err := os.ReadFile(filepath.Join(dir, environmentFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrEnvironmentNotFound, name)
		}
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	var cfg types.EnvironmentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment %s: %w", name, err)
	}
	if cfg.Name == "" {
		cfg.Name = name
	}

	if cfg.VarsPath == "" {
		cfg.VarsPath = varsFileName
	}
	if !filepath.IsAbs(cfg.VarsPath) {
		cfg.VarsPath = filepath.Join(dir, cfg.VarsPath)
	}
	if spec := cfg.DefaultSpec; spec != nil && spec.Kind == types.SourceFile && !filepath.IsAbs(spec.Value) {
		spec.Value = filepath.Join(dir, spec.Value)
	}
	for i := range cfg.Requests {
		if cfg.Requests[i].Auth.Method == "" {
			cfg.Requests[i].Auth.Method = types.AuthInherit
		}
	}

	return &cfg, nil
}

// List returns the names of all stored environments, sorted
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read environments directory: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, entry.Name(), environmentFileName)); err == nil {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named environment and clears it as current
func (s *Store) Delete(name string) error {
	if _, err := s.Get(name); err != nil {
		return err
	}
	if err := os.RemoveAll(s.Dir(name)); err != nil {
		return fmt.Errorf("failed to delete environment: %w", err)
	}

	if current, _ := s.Current(); strings.EqualFold(current, name) {
		if err := os.Remove(filepath.Join(s.root, currentFileName)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear current environment: %w", err)
		}
	}
	return nil
}

// UpsertRequest adds def to the environment, replacing a request with the
// same name (ignoring case)
func (s *Store) UpsertRequest(envName string, def types.RequestDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return errors.New("request name is required")
	}

	cfg, err := s.Get(envName)
	if err != nil {
		return err
	}

	if existing, ok := cfg.FindRequest(def.Name); ok {
		*existing = def
	} else {
		cfg.Requests = append(cfg.Requests, def)
	}
	return s.Save(cfg)
}

// RemoveRequest deletes the named request from the environment
func (s *Store) RemoveRequest(envName, reqName string) error {
	cfg, err := s.Get(envName)
	if err != nil {
		return err
	}

	kept := cfg.Requests[:0]
	found := false
	for _, def := range cfg.Requests {
		if strings.EqualFold(def.Name, reqName) {
			found = true
			continue
		}
		kept = append(kept, def)
	}
	if !found {
		return fmt.Errorf("request %q not found in environment %s", reqName, envName)
	}

	cfg.Requests = kept
	return s.Save(cfg)
}

// Current returns the name of the current environment, or "" if none is set
func (s *Store) Current() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, currentFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read current environment: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SetCurrent marks name as the current environment
func (s *Store) SetCurrent(name string) error {
	if _, err := s.Get(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.root, DirPermissions); err != nil {
		return fmt.Errorf("failed to create environments directory: %w", err)
	}
	return os.WriteFile(filepath.Join(s.root, currentFileName), []byte(name+"\n"), FilePermissions)
}

// copyFile copies src to dst unless both name the same file
func copyFile(src, dst string) error {
	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	if srcAbs == dstAbs {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", src, types.ErrFileNotFound)
		}
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePermissions)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
