// Package config loads and stores the tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"chronicle/pkg/models"
)

// FileName is the default configuration file name.
const FileName = "chronicle.yaml"

// EnvConfigFile overrides the configuration file location.
const EnvConfigFile = "CHRONICLE_CONFIG"

// GetConfigFile returns the configuration file path: the environment
// override, a file in the working directory, or the home fallback.
func GetConfigFile() string {
	if configFile := os.Getenv(EnvConfigFile); configFile != "" {
		return configFile
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, ".chronicle", FileName)
}

// Load reads the configuration file. A missing file yields an empty
// configuration, not an error.
func Load() (*models.Config, error) {
	return LoadFrom(GetConfigFile())
}

// LoadFrom reads a configuration file from an explicit path.
func LoadFrom(path string) (*models.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &models.Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config models.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

// Save writes the configuration to the given path, creating the directory
// if needed.
func Save(config *models.Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists reports whether a configuration file is present.
func Exists() bool {
	_, err := os.Stat(GetConfigFile())
	return err == nil
}
