package cmd

import (
	"fmt"
	"strings"

	"github.com/longkey1/chatpad/internal/chatpad/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configFields lists the fields 'config <field>' accepts, in display order.
var configFields = []string{
	"configfile", "model",
	"openai_base_url", "openai_token",
	"gemini_token",
	"anthropic_base_url", "anthropic_token",
	"ollama_base_url",
	"image_base_url", "image_token", "image_model",
	"data_dir", "prompt_dirs", "stream",
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.
Tokens are masked.

If a field name is specified, only that field's value is displayed.
Available fields: ` + strings.Join(configFields, ", ") + `

Examples:
  chatpad config              # Show all configuration
  chatpad config model        # Show only model
  chatpad config data_dir     # Show where conversations and images are stored`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if len(args) > 0 {
			value, ok := configValue(cfg, strings.ToLower(args[0]))
			if !ok {
				return fmt.Errorf("unknown field: %s\nAvailable fields: %s", args[0], strings.Join(configFields, ", "))
			}
			fmt.Println(value)
			return nil
		}

		for _, field := range configFields {
			value, _ := configValue(cfg, field)
			fmt.Printf("%s: %s\n", field, value)
		}
		return nil
	},
}

func configValue(cfg *config.Config, field string) (string, bool) {
	switch field {
	case "configfile":
		return viper.ConfigFileUsed(), true
	case "model":
		return cfg.Model, true
	case "openai_base_url":
		return cfg.OpenAIBaseURL, true
	case "openai_token":
		return maskToken(cfg.OpenAIToken), true
	case "gemini_token":
		return maskToken(cfg.GeminiToken), true
	case "anthropic_base_url":
		return cfg.AnthropicBaseURL, true
	case "anthropic_token":
		return maskToken(cfg.AnthropicToken), true
	case "ollama_base_url":
		return cfg.OllamaBaseURL, true
	case "image_base_url":
		return cfg.GetImageBaseURL(), true
	case "image_token":
		return maskToken(cfg.ImageToken), true
	case "image_model":
		return cfg.ImageModel, true
	case "data_dir":
		return cfg.DataDir, true
	case "prompt_dirs":
		return strings.Join(cfg.PromptDirs, ","), true
	case "stream":
		return fmt.Sprintf("%v", cfg.Stream), true
	}
	return "", false
}

// maskToken returns a masked version of the token for security
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
}
