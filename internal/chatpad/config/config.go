package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/longkey1/chatpad/internal/chatpad"
	"github.com/spf13/viper"
)

// Config holds the configuration for chat and image generation
type Config struct {
	Model            string   `toml:"model" mapstructure:"model"` // Format: "provider:model" (e.g., "openai:gpt-4.1")
	OpenAIBaseURL    string   `toml:"openai_base_url" mapstructure:"openai_base_url"`
	OpenAIToken      string   `toml:"openai_token" mapstructure:"openai_token"`
	GeminiToken      string   `toml:"gemini_token" mapstructure:"gemini_token"`
	AnthropicBaseURL string   `toml:"anthropic_base_url" mapstructure:"anthropic_base_url"`
	AnthropicToken   string   `toml:"anthropic_token" mapstructure:"anthropic_token"`
	OllamaBaseURL    string   `toml:"ollama_base_url" mapstructure:"ollama_base_url"`
	ImageBaseURL     string   `toml:"image_base_url" mapstructure:"image_base_url"`
	ImageToken       string   `toml:"image_token" mapstructure:"image_token"`
	ImageModel       string   `toml:"image_model" mapstructure:"image_model"`
	DataDir          string   `toml:"data_dir" mapstructure:"data_dir"` // Empty = directory of the config file
	PromptDirs       []string `toml:"prompt_dirs" mapstructure:"prompt_dirs"`
	Stream           bool     `toml:"stream" mapstructure:"stream"` // Stream chat replies fragment by fragment
}

// GetModel returns the model string in "provider:model" format
func (c *Config) GetModel() string {
	return c.Model
}

// GetProvider extracts provider name from the model string
func (c *Config) GetProvider() (string, error) {
	provider, _, err := chatpad.ParseModelString(c.Model)
	return provider, err
}

// GetModelName extracts model name from the model string
func (c *Config) GetModelName() (string, error) {
	_, model, err := chatpad.ParseModelString(c.Model)
	return model, err
}

// WithModel returns a copy of the config using a different model.
func (c *Config) WithModel(model string) *Config {
	clone := *c
	clone.Model = model
	return &clone
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(promptDir string) *Config {
	return &Config{
		Model:            "openai:gpt-4.1",
		OpenAIBaseURL:    "https://api.openai.com/v1",
		OpenAIToken:      "$OPENAI_API_KEY", // Default to env var
		GeminiToken:      "$GEMINI_API_KEY",
		AnthropicBaseURL: "https://api.anthropic.com/v1",
		AnthropicToken:   "$ANTHROPIC_API_KEY",
		OllamaBaseURL:    "http://localhost:11434",
		ImageBaseURL:     "https://api.openai.com/v1",
		ImageToken:       "$OPENAI_API_KEY",
		ImageModel:       "dall-e-2",
		DataDir:          "",
		PromptDirs:       []string{promptDir},
		Stream:           true,
	}
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	// Expand $VAR references in secrets and endpoints
	for _, field := range []*string{
		&config.OpenAIBaseURL,
		&config.OpenAIToken,
		&config.GeminiToken,
		&config.AnthropicBaseURL,
		&config.AnthropicToken,
		&config.OllamaBaseURL,
		&config.ImageBaseURL,
		&config.ImageToken,
	} {
		*field = expandEnvVar(*field)
	}

	// Convert prompt directories to absolute paths
	for i, promptDir := range config.PromptDirs {
		absPath, err := ResolvePath(promptDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving prompt directory path '%s': %v", promptDir, err)
		}
		config.PromptDirs[i] = absPath
	}

	dataDir, err := resolveDataDir(config.DataDir)
	if err != nil {
		return nil, err
	}
	config.DataDir = dataDir

	return config, nil
}

// ConversationDir returns the directory conversations are stored in.
func (c *Config) ConversationDir() string {
	return filepath.Join(c.DataDir, "conversations")
}

// ImageDBPath returns the path of the image database.
func (c *Config) ImageDBPath() string {
	return filepath.Join(c.DataDir, "images.db")
}

// resolveDataDir returns the data directory.
// If a config file is used, data is stored in the same directory as the config file.
// Otherwise, defaults to $HOME/.config/chatpad
func resolveDataDir(dataDir string) (string, error) {
	if dataDir != "" {
		return ResolvePath(expandEnvVar(dataDir))
	}

	if viper.ConfigFileUsed() != "" {
		return ResolvePath(".")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "chatpad"), nil
}
