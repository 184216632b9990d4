package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// HomeEnvVar overrides the configuration directory
	HomeEnvVar = "RESTSYNTH_HOME"
)

var (
	// ConfigDir is the global configuration directory (~/.restsynth)
	ConfigDir string

	// EnvironmentsDir holds one directory per named environment
	EnvironmentsDir string

	// DatabasePath is the SQLite database file for execution history
	DatabasePath string

	// SettingsFile is the default viper settings file
	SettingsFile string
)

// Initialize sets up the configuration directories.
// It creates ~/.restsynth/ (or $RESTSYNTH_HOME) if it doesn't exist.
func Initialize() error {
	dir := strings.TrimSpace(os.Getenv(HomeEnvVar))
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".restsynth")
	}
	return InitializeAt(dir)
}

// InitializeAt sets the global paths below dir and creates the directories
func InitializeAt(dir string) error {
	ConfigDir = dir
	EnvironmentsDir = filepath.Join(ConfigDir, "environments")
	DatabasePath = filepath.Join(ConfigDir, "history.db")
	SettingsFile = filepath.Join(ConfigDir, "config.yaml")

	for _, d := range []string{ConfigDir, EnvironmentsDir} {
		if err := os.MkdirAll(d, DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	return nil
}

// ExpandPath resolves a leading ~/ to the home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}
