package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"batchrvt/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/batchrvt"
	configFileName = "config.yaml"
	logFolderName  = "logs"
)

// osUserHomeDir is a variable so tests can redirect the home directory.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/batchrvt.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath; an empty configPath means the
// default directory. A missing file yields the defaults.
func LoadConfig(configPath string) (Config, error) {
	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
	}
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return withDerivedDefaults(config, configPath), nil
		}
		return Config{}, ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: "io",
			Message:   err.Error(),
		}
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, ConfigurationError{
			FilePath:    configFilePath,
			ErrorType:   "parse",
			Message:     err.Error(),
			Suggestions: []string{"Check the YAML syntax", "Delete the file to fall back to defaults"},
		}
	}
	if err := Validate(config); err != nil {
		return Config{}, ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: "validation",
			Message:   err.Error(),
		}
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return withDerivedDefaults(config, configPath), nil
}

func withDerivedDefaults(c Config, configPath string) Config {
	if c.LogFolder == "" {
		c.LogFolder = filepath.Join(configPath, logFolderName)
	}
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = DefaultPollIntervalMs
	}
	if c.DrainGraceMs == 0 {
		c.DrainGraceMs = DefaultDrainGraceMs
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return c
}

// Validate checks values that cannot be corrected silently.
func Validate(c Config) error {
	var problems ValidationErrors
	if c.PollIntervalMs < 0 {
		problems = append(problems, "pollIntervalMs cannot be negative")
	}
	if c.DrainGraceMs < 0 {
		problems = append(problems, "drainGraceMs cannot be negative")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return problems
	}
	return nil
}

// SaveConfig writes c to configPath/config.yaml.
func SaveConfig(configPath string, c Config) error {
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", configPath, err)
	}
	data, err := yaml.Marshal(&c)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	path := filepath.Join(configPath, configFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Saved configuration to %s", path)
	return nil
}

// Exists reports whether configPath holds a config.yaml.
func Exists(configPath string) (bool, error) {
	_, err := os.Stat(filepath.Join(configPath, configFileName))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
