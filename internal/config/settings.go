package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Output formats accepted by the output setting
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputBody = "body"
)

// Settings are the application settings read through viper
type Settings struct {
	DefaultEnv string        `mapstructure:"default_env"`
	Output     string        `mapstructure:"output"`
	Timeout    time.Duration `mapstructure:"timeout"`
	History    bool          `mapstructure:"history"`
}

// NewViper returns a viper instance with defaults and RESTSYNTH_ env binding.
// file may be empty, in which case config.yaml in ConfigDir is used when present.
func NewViper(file string) *viper.Viper {
	v := viper.New()
	v.SetDefault("default_env", "")
	v.SetDefault("output", OutputText)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("history", true)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if ConfigDir != "" {
			v.AddConfigPath(ConfigDir)
		}
	}

	v.SetEnvPrefix("RESTSYNTH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings reads settings from file (or the default location) and the
// environment. A missing default config file is not an error.
func LoadSettings(file string) (Settings, error) {
	v := NewViper(file)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}

	s.Output = strings.ToLower(strings.TrimSpace(s.Output))
	if err := ValidateOutput(s.Output); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ValidateOutput checks an output format name
func ValidateOutput(format string) error {
	switch format {
	case OutputText, OutputJSON, OutputYAML, OutputBody:
		return nil
	}
	return fmt.Errorf("invalid output format %q (use text, json, yaml or body)", format)
}
