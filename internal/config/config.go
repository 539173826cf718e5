package config

import "time"

// Config represents the main application configuration.
type Config struct {
	API          APIConfig          `yaml:"api"`
	Model        ModelConfig        `yaml:"model"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	History      HistoryConfig      `yaml:"history"`
	State        StateConfig        `yaml:"state"`
	Logging      LoggingConfig      `yaml:"logging"`

	// Runtime version information
	Version string `yaml:"-"`
}

// APIConfig holds provider-related settings.
type APIConfig struct {
	// Active provider: gemini, ollama, scripted (default: gemini)
	Provider string `yaml:"provider"`

	GeminiKey string `yaml:"gemini_key,omitempty"`

	// Ollama server URL (default: http://localhost:11434)
	OllamaBaseURL string `yaml:"ollama_base_url,omitempty"`

	// Timeout for a single provider call.
	Timeout time.Duration `yaml:"timeout"`
}

// ModelConfig holds model-related settings.
type ModelConfig struct {
	Name            string  `yaml:"name"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// OrchestratorConfig holds turn-processing settings.
type OrchestratorConfig struct {
	// HistoryWindow is the number of recent conversation entries included
	// in each provider request.
	HistoryWindow int `yaml:"history_window"`

	// DispatchCap bounds the number of actions executed in a single turn.
	DispatchCap int `yaml:"dispatch_cap"`
}

// HistoryConfig holds conversation persistence settings.
type HistoryConfig struct {
	Persist bool   `yaml:"persist"`
	DataDir string `yaml:"data_dir,omitempty"`
}

// StateConfig holds canvas state persistence settings.
type StateConfig struct {
	// Path to the state file. Empty means in-memory only.
	Path string `yaml:"path,omitempty"`

	// Watch reloads the state file when it changes on disk.
	Watch bool `yaml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  bool   `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Provider:      "gemini",
			OllamaBaseURL: "http://localhost:11434",
			Timeout:       60 * time.Second,
		},
		Model: ModelConfig{
			Name:            "gemini-2.5-flash",
			Temperature:     0.2,
			MaxOutputTokens: 8192,
		},
		Orchestrator: OrchestratorConfig{
			HistoryWindow: 12,
			DispatchCap:   8,
		},
		History: HistoryConfig{
			Persist: true,
		},
		State: StateConfig{
			Watch: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  false,
		},
	}
}
