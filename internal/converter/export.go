package converter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restsynth/internal/config"
	"github.com/studiowebux/restsynth/internal/types"
)

// Catalog file formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatEnv  = "env"
)

// CatalogFiles lists the files written by WriteCatalog
type CatalogFiles struct {
	Requests  string
	Variables string
}

// WriteCatalog writes defs and the variable skeleton into dir. format
// selects yaml or json for requests; env writes the variables as a .env
// file next to a YAML request file.
func WriteCatalog(dir string, defs []types.RequestDefinition, vars types.Vars, format string) (CatalogFiles, error) {
	if format == "" {
		format = FormatYAML
	}

	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return CatalogFiles{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	var files CatalogFiles
	var data []byte
	var err error
	switch format {
	case FormatYAML, FormatEnv:
		files.Requests = filepath.Join(dir, "requests.yaml")
		data, err = yaml.Marshal(defs)
	case FormatJSON:
		files.Requests = filepath.Join(dir, "requests.json")
		data, err = json.MarshalIndent(defs, "", "  ")
	default:
		return CatalogFiles{}, fmt.Errorf("unsupported catalog format: %s (use yaml, json or env)", format)
	}
	if err != nil {
		return CatalogFiles{}, fmt.Errorf("failed to encode requests: %w", err)
	}

	if err := os.WriteFile(files.Requests, data, config.FilePermissions); err != nil {
		return CatalogFiles{}, fmt.Errorf("failed to write requests file: %w", err)
	}

	switch format {
	case FormatEnv:
		files.Variables = filepath.Join(dir, ".env")
	case FormatJSON:
		files.Variables = filepath.Join(dir, "variables.json")
	default:
		files.Variables = filepath.Join(dir, "variables.yaml")
	}
	if err := config.SaveVariables(files.Variables, vars); err != nil {
		return CatalogFiles{}, err
	}

	return files, nil
}
