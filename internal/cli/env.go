package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restsynth/internal/config"
	"github.com/studiowebux/restsynth/internal/parser"
	"github.com/studiowebux/restsynth/internal/types"
)

// EnvCreateOptions describe a new environment
type EnvCreateOptions struct {
	Name     string
	VarsPath string
	Spec     *types.OpenAPISource
	Auth     *types.AuthConfig
	Use      bool
	Force    bool
}

func (a *App) store() (*config.Store, error) {
	if a.Store == nil {
		return nil, errors.New("environment store is not configured")
	}
	return a.Store, nil
}

// CreateEnv stores a new environment
func (a *App) CreateEnv(opts EnvCreateOptions) error {
	store, err := a.store()
	if err != nil {
		return err
	}

	if existing, err := store.Get(opts.Name); err == nil && !opts.Force {
		return fmt.Errorf("environment %s already exists (use --force to replace it)", existing.Name)
	} else if err != nil && !errors.Is(err, config.ErrEnvironmentNotFound) {
		return err
	}

	cfg := &types.EnvironmentConfig{
		Name:        opts.Name,
		VarsPath:    opts.VarsPath,
		DefaultSpec: opts.Spec,
		DefaultAuth: opts.Auth,
	}
	if err := store.Save(cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Created environment %s (%s)\n", cfg.Name, store.Dir(cfg.Name))

	if opts.Use {
		return a.UseEnv(cfg.Name)
	}
	return nil
}

// ListEnvs prints every environment, marking the current one
func (a *App) ListEnvs() error {
	store, err := a.store()
	if err != nil {
		return err
	}

	names, err := store.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(a.Stderr, "No environments (create one with 'env create')")
		return nil
	}

	current, err := store.Current()
	if err != nil {
		return err
	}
	for _, name := range names {
		marker := "  "
		if strings.EqualFold(name, current) {
			marker = "* "
		}
		fmt.Fprintln(a.Stdout, marker+name)
	}
	return nil
}

// ShowEnv prints an environment with its variables. An empty name shows
// the current environment.
func (a *App) ShowEnv(name, format string) error {
	cfg, err := a.requireEnvironment(name)
	if err != nil {
		return err
	}
	vars, err := config.LoadVariables(cfg.VarsPath)
	if err != nil {
		return err
	}

	format, err = a.outputFormat(format)
	if err != nil {
		return err
	}

	view := struct {
		types.EnvironmentConfig `yaml:",inline"`
		Variables               types.Vars `json:"variables" yaml:"variables"`
	}{*cfg, vars}

	switch format {
	case config.OutputJSON:
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return err
		}
		return a.emit(string(data)+"\n", "")
	case config.OutputYAML:
		data, err := yaml.Marshal(view)
		if err != nil {
			return err
		}
		return a.emit(string(data), "")
	}

	fmt.Fprintf(a.Stdout, "%s %s\n", methodStyle.Render("Environment:"), cfg.Name)
	fmt.Fprintf(a.Stdout, "Variables file: %s\n", cfg.VarsPath)
	if cfg.DefaultSpec != nil {
		fmt.Fprintf(a.Stdout, "OpenAPI (%s): %s\n", cfg.DefaultSpec.Kind, summarize(cfg.DefaultSpec.Value))
	}
	if cfg.DefaultAuth != nil {
		fmt.Fprintf(a.Stdout, "Default auth: %s\n", cfg.DefaultAuth.Method)
	}

	fmt.Fprintf(a.Stdout, "\nVariables (%d):\n", len(vars))
	for _, key := range config.VariableNames(vars) {
		fmt.Fprintf(a.Stdout, "  %s = %s\n", key, vars[key])
	}

	fmt.Fprintf(a.Stdout, "\nRequests (%d):\n", len(cfg.Requests))
	return a.printRequests(cfg.Requests)
}

// summarize shortens raw spec text to its first line
func summarize(value string) string {
	first, _, multiline := strings.Cut(strings.TrimSpace(value), "\n")
	if multiline {
		return first + " ..."
	}
	return first
}

// DeleteEnv removes an environment after confirmation
func (a *App) DeleteEnv(name string, yes bool) error {
	store, err := a.store()
	if err != nil {
		return err
	}
	if _, err := store.Get(name); err != nil {
		return err
	}

	if !yes {
		if !a.Interactive {
			return errors.New("refusing to delete without confirmation (use --yes)")
		}
		ok, err := confirm(a.input(), a.Stderr, fmt.Sprintf("Delete environment %s?", name))
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("deletion cancelled")
		}
	}

	if err := store.Delete(name); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Deleted environment %s\n", name)
	return nil
}

// UseEnv marks an environment as current
func (a *App) UseEnv(name string) error {
	store, err := a.store()
	if err != nil {
		return err
	}
	if err := store.SetCurrent(name); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Using environment %s\n", name)
	return nil
}

// ListRequests prints the saved requests of an environment
func (a *App) ListRequests(envName string) error {
	s, err := a.openSession(VarOptions{Env: envName})
	if err != nil {
		return err
	}
	if s.env == nil {
		return errNoEnvironment
	}
	if len(s.env.Requests) == 0 {
		fmt.Fprintf(a.Stderr, "No requests in environment %s\n", s.env.Name)
		return nil
	}
	return a.printRequests(s.env.Requests)
}

func (a *App) printRequests(defs []types.RequestDefinition) error {
	w := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	for _, def := range defs {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			def.Name,
			def.Method,
			def.URL,
			mutedStyle.Render(strings.Join(parser.ExtractRequestVariables(def.Options()), ", ")),
		)
	}
	return w.Flush()
}

// ImportRequests adds the definitions of a YAML or JSON file to an
// environment. An OpenAPI document is turned into a catalog first. An empty
// envName selects the current environment.
func (a *App) ImportRequests(ctx context.Context, envName, path string) error {
	store, err := a.store()
	if err != nil {
		return err
	}
	cfg, err := a.requireEnvironment(envName)
	if err != nil {
		return err
	}

	path, err = config.ExpandPath(path)
	if err != nil {
		return err
	}
	format, err := parser.DetectFormat(path)
	if err != nil {
		return err
	}
	if format == parser.FormatOpenAPI {
		src := &types.OpenAPISource{Kind: types.SourceFile, Value: path}
		return a.RunCatalog(ctx, CatalogOptions{Source: src, Env: cfg.Name}, VarOptions{})
	}

	defs, err := parser.ParseDefinitionsFile(path)
	if err != nil {
		return err
	}
	upsertRequests(cfg, defs)
	if err := store.Save(cfg); err != nil {
		return err
	}

	fmt.Fprintf(a.Stdout, "Imported %d request(s) into %s\n", len(defs), cfg.Name)
	return nil
}

// RemoveRequest deletes a saved request
func (a *App) RemoveRequest(envName, name string) error {
	store, err := a.store()
	if err != nil {
		return err
	}
	cfg, err := a.requireEnvironment(envName)
	if err != nil {
		return err
	}
	if err := store.RemoveRequest(cfg.Name, name); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Removed request %s from %s\n", name, cfg.Name)
	return nil
}

func (a *App) requireEnvironment(name string) (*types.EnvironmentConfig, error) {
	cfg, err := a.selectEnvironment(name)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errNoEnvironment
	}
	return cfg, nil
}

// upsertRequests replaces same-named requests (ignoring case) and appends the rest
func upsertRequests(cfg *types.EnvironmentConfig, defs []types.RequestDefinition) {
	for _, def := range defs {
		if existing, ok := cfg.FindRequest(def.Name); ok {
			*existing = def
			continue
		}
		cfg.Requests = append(cfg.Requests, def)
	}
}
