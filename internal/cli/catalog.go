package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restsynth/internal/config"
	"github.com/studiowebux/restsynth/internal/converter"
	"github.com/studiowebux/restsynth/internal/types"
)

// CatalogOptions select where a derived catalog goes. With neither OutDir
// nor Env set the catalog is printed as YAML.
type CatalogOptions struct {
	Source *types.OpenAPISource // nil uses the environment default
	Env    string               // store requests and variables in this environment
	OutDir string               // write requests and variables files here
	Format string               // yaml, json or env (OutDir only)
	Strict bool
}

// catalogDocument is the printed form of a catalog
type catalogDocument struct {
	Requests  []types.RequestDefinition `yaml:"requests"`
	Variables types.Vars                `yaml:"variables"`
}

// RunCatalog derives request definitions and a variable skeleton from an
// OpenAPI document
func (a *App) RunCatalog(ctx context.Context, opts CatalogOptions, vars VarOptions) error {
	if opts.Env != "" && opts.OutDir != "" {
		return errors.New("--env and --out cannot be used together")
	}
	if vars.Env == "" {
		vars.Env = opts.Env
	}

	s, err := a.openSession(vars)
	if err != nil {
		return err
	}

	doc, err := a.loadDocument(ctx, s, opts.Source, opts.Strict)
	if err != nil {
		return err
	}

	defs := converter.DeriveRequests(doc)
	derived := converter.DeriveVariables(doc)
	slog.Debug("derived catalog", "requests", len(defs), "variables", len(derived))

	switch {
	case opts.OutDir != "":
		dir, err := config.ExpandPath(opts.OutDir)
		if err != nil {
			return err
		}
		files, err := converter.WriteCatalog(dir, defs, derived, opts.Format)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Stdout, "Wrote %s\n", files.Requests)
		fmt.Fprintf(a.Stdout, "Wrote %s\n", files.Variables)

	case opts.Env != "":
		if err := a.storeCatalog(s.env, defs, derived); err != nil {
			return err
		}

	default:
		data, err := yaml.Marshal(catalogDocument{Requests: defs, Variables: derived})
		if err != nil {
			return fmt.Errorf("failed to encode catalog: %w", err)
		}
		if _, err := a.Stdout.Write(data); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.Stderr, "%d request(s), %d variable(s)\n", len(defs), len(derived))
	return nil
}

// storeCatalog upserts defs into env and seeds its variables file with the
// derived names. Existing non-blank values are kept.
func (a *App) storeCatalog(env *types.EnvironmentConfig, defs []types.RequestDefinition, derived types.Vars) error {
	store, err := a.store()
	if err != nil {
		return err
	}

	current, err := config.LoadVariables(env.VarsPath)
	if err != nil {
		return err
	}
	added := 0
	for _, name := range config.VariableNames(derived) {
		if current.HasValue(name) {
			continue
		}
		if !current.Has(name) {
			added++
		}
		current = current.Merge(types.Vars{name: derived[name]})
	}
	if err := config.SaveVariables(env.VarsPath, current); err != nil {
		return err
	}

	upsertRequests(env, defs)
	if err := store.Save(env); err != nil {
		return err
	}

	fmt.Fprintf(a.Stdout, "Stored %d request(s) in %s (%d new variable(s))\n", len(defs), env.Name, added)
	return nil
}
