package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			// Config file is optional, don't fail if it doesn't exist
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	// Override with environment variables
	loadFromEnv(cfg)

	return cfg, nil
}

// LoadFile loads configuration from an explicit path, plus env overrides.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, err
	}
	loadFromEnv(cfg)
	return cfg, nil
}

// getConfigPath returns the path to the config file.
func getConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "canvassist", "config.yaml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	// For macOS, favor Library/Application Support/canvassist if it exists
	if runtime.GOOS == "darwin" {
		appSupport := filepath.Join(homeDir, "Library", "Application Support", "canvassist", "config.yaml")
		if _, err := os.Stat(appSupport); err == nil {
			return appSupport
		}
		dotConfig := filepath.Join(homeDir, ".config", "canvassist", "config.yaml")
		if _, err := os.Stat(dotConfig); err == nil {
			return dotConfig
		}
		return appSupport
	}

	// Default for other Unix-like systems
	return filepath.Join(homeDir, ".config", "canvassist", "config.yaml")
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Expand environment variables in the config file
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func loadFromEnv(cfg *Config) {
	if apiKey := os.Getenv("CANVASSIST_API_KEY"); apiKey != "" {
		cfg.API.GeminiKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.API.GeminiKey = apiKey
	}

	if model := os.Getenv("CANVASSIST_MODEL"); model != "" {
		cfg.Model.Name = model
	}

	if provider := os.Getenv("CANVASSIST_PROVIDER"); provider != "" {
		cfg.API.Provider = provider
	}

	if baseURL := os.Getenv("OLLAMA_HOST"); baseURL != "" {
		cfg.API.OllamaBaseURL = baseURL
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.API.Provider {
	case "gemini":
		if c.API.GeminiKey == "" {
			return ErrMissingAuth
		}
	case "ollama":
	default:
		return ConfigError(fmt.Sprintf("unknown provider %q: expected gemini or ollama", c.API.Provider))
	}
	if c.Orchestrator.DispatchCap <= 0 {
		return ConfigError("orchestrator.dispatch_cap must be positive")
	}
	if c.Orchestrator.HistoryWindow <= 0 {
		return ConfigError("orchestrator.history_window must be positive")
	}
	return nil
}

// ConfigError is a configuration validation error.
type ConfigError string

func (e ConfigError) Error() string {
	return string(e)
}

var (
	// ErrMissingAuth indicates no API key was configured for the provider.
	ErrMissingAuth ConfigError = "missing authentication: set GEMINI_API_KEY environment variable or api.gemini_key in config.yaml"
)

// DataDir returns the directory for persistent data (history, state, logs).
func DataDir() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "canvassist"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(homeDir, "Library", "Application Support", "canvassist"), nil
	}

	return filepath.Join(homeDir, ".local", "share", "canvassist"), nil
}
