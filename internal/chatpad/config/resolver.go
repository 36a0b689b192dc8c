package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Provider names accepted in the "provider:model" string.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// expandEnvVar expands environment variable references in the given value
// Supports both $VAR and ${VAR} syntax
// If the environment variable is not set, returns empty string.
func expandEnvVar(value string) string {
	if !strings.HasPrefix(value, "$") {
		return value
	}

	var envVarName string
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVarName = value[2 : len(value)-1]
	} else {
		envVarName = strings.TrimPrefix(value, "$")
	}

	return os.Getenv(envVarName)
}

// GetBaseURL returns the base URL for the specified provider.
// Gemini has no configurable base URL and returns an empty string.
func (c *Config) GetBaseURL(provider string) (string, error) {
	var baseURLValue string
	switch provider {
	case ProviderOpenAI:
		baseURLValue = c.OpenAIBaseURL
	case ProviderGemini:
		return "", nil
	case ProviderAnthropic:
		baseURLValue = c.AnthropicBaseURL
	case ProviderOllama:
		baseURLValue = c.OllamaBaseURL
	default:
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}

	if baseURLValue == "" {
		return "", fmt.Errorf("%s base URL is not configured. Set it in config file (%s_base_url) or environment variable (CHATPAD_%s_BASE_URL)", provider, provider, strings.ToUpper(provider))
	}

	return baseURLValue, nil
}

// GetToken returns the token for the specified provider.
// Ollama needs no token and returns an empty string.
func (c *Config) GetToken(provider string) (string, error) {
	var tokenValue string
	switch provider {
	case ProviderOpenAI:
		tokenValue = c.OpenAIToken
	case ProviderGemini:
		tokenValue = c.GeminiToken
	case ProviderAnthropic:
		tokenValue = c.AnthropicToken
	case ProviderOllama:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}

	if tokenValue == "" {
		return "", fmt.Errorf("%s token is not configured. Set it in config file (%s_token) or environment variable (CHATPAD_%s_TOKEN)", provider, provider, strings.ToUpper(provider))
	}

	return tokenValue, nil
}

// GetImageBaseURL returns the base URL of the image generation API.
func (c *Config) GetImageBaseURL() string {
	return strings.TrimRight(c.ImageBaseURL, "/")
}

// GetImageToken returns the token for the image generation API.
func (c *Config) GetImageToken() string {
	return c.ImageToken
}

// GetImageModel returns the image model name.
func (c *Config) GetImageModel() string {
	return c.ImageModel
}

// ResolvePath converts a relative path to absolute path if needed.
// Relative paths are resolved against the directory of the config file in use,
// or the current working directory when no config file was read.
func ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("error getting current working directory: %v", err)
		}
		return filepath.Join(cwd, path), nil
	}

	configDir := filepath.Dir(configFile)

	if !filepath.IsAbs(configDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("error getting current working directory: %v", err)
		}
		configDir = filepath.Join(cwd, configDir)
	}

	return filepath.Join(configDir, path), nil
}
