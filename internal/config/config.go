// Package config loads and saves the persisted bm settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv overrides the stored API key when set.
const APIKeyEnv = "ANTHROPIC_API_KEY"

// DefaultModel is the model used when none is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// Settings holds application configuration.
type Settings struct {
	APIKey   string `yaml:"apiKey,omitempty"`
	AutoSort bool   `yaml:"autoSort"`
	Model    string `yaml:"model"`
	LogLevel string `yaml:"logLevel"`
	DataDir  string `yaml:"dataDir"`
}

// Defaults returns the default settings.
func Defaults() Settings {
	dataDir, err := DefaultDir()
	if err != nil {
		dataDir = ".bm"
	}
	return Settings{
		Model:    DefaultModel,
		LogLevel: "warn",
		DataDir:  dataDir,
	}
}

// DefaultDir returns the default settings directory: ~/.config/bm
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bm"), nil
}

// DefaultPath returns the default settings path: ~/.config/bm/config.yaml
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads settings from path.
// Creates the file with defaults if it doesn't exist.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		settings := Defaults()
		// Non-fatal: defaults are usable even if they cannot be written
		_ = Save(path, &settings)
		settings.applyEnv()
		return &settings, nil
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings yaml: %w", err)
	}

	defaults := Defaults()
	if settings.Model == "" {
		settings.Model = defaults.Model
	}
	if settings.LogLevel == "" {
		settings.LogLevel = defaults.LogLevel
	}
	if settings.DataDir == "" {
		settings.DataDir = defaults.DataDir
	}
	settings.applyEnv()

	return &settings, nil
}

// Save writes settings to path.
// Creates the directory if it doesn't exist.
func Save(path string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}

	// may hold an API key
	return os.WriteFile(path, data, 0600)
}

func (s *Settings) applyEnv() {
	if key := os.Getenv(APIKeyEnv); key != "" {
		s.APIKey = key
	}
}
