package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/restsynth/internal/types"
)

// BodyLoader turns a body specification into body text
type BodyLoader interface {
	Load(spec string) (string, error)
}

// FileBodyLoader reads @path references from disk and returns anything else
// as literal text. Relative paths are resolved against BaseDir when set.
type FileBodyLoader struct {
	BaseDir string
}

// Load returns "" for an empty spec, the file contents for "@path" and the
// spec itself otherwise.
func (l FileBodyLoader) Load(spec string) (string, error) {
	if spec == "" {
		return "", nil
	}

	path, isFile := strings.CutPrefix(spec, "@")
	if !isFile {
		return spec, nil
	}

	if l.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("body file %s: %w", path, types.ErrFileNotFound)
		}
		return "", fmt.Errorf("failed to read body file: %w", err)
	}
	return string(data), nil
}
