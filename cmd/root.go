/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/longkey1/chatpad/internal/chatpad/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatpad",
	Short: "Chat with hosted language models and generate images",
	Long: `chatpad is a command-line chat and image generation client.
Replies are streamed as they arrive, and conversations and generated images
are kept locally between runs.

Supported chat providers: openai, gemini, anthropic, ollama.
You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l
		logger.Debug("configuration loaded",
			zap.String("config_file", viper.ConfigFileUsed()),
			zap.String("model", viper.GetString("model")),
			zap.Strings("prompt_dirs", viper.GetStringSlice("prompt_dirs")))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newLogger writes structured logs to stderr: debug and up when verbose,
// warnings and errors otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	return cfg.Build()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/chatpad/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	// A missing .env is not an error
	_ = godotenv.Load()

	viper.SetEnvPrefix("CHATPAD")
	viper.AutomaticEnv()

	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "chatpad")

	// Later directories take precedence over earlier ones
	defaultPromptDirs := []string{
		"/usr/share/chatpad/prompts",
		"/usr/local/share/chatpad/prompts",
		filepath.Join(userConfigDir, "prompts"),
	}
	defaultConfig := config.NewDefaultConfig(filepath.Join(userConfigDir, "prompts"))

	viper.SetDefault("model", defaultConfig.Model)
	viper.SetDefault("openai_base_url", defaultConfig.OpenAIBaseURL)
	viper.SetDefault("openai_token", defaultConfig.OpenAIToken)
	viper.SetDefault("gemini_token", defaultConfig.GeminiToken)
	viper.SetDefault("anthropic_base_url", defaultConfig.AnthropicBaseURL)
	viper.SetDefault("anthropic_token", defaultConfig.AnthropicToken)
	viper.SetDefault("ollama_base_url", defaultConfig.OllamaBaseURL)
	viper.SetDefault("image_base_url", defaultConfig.ImageBaseURL)
	viper.SetDefault("image_token", defaultConfig.ImageToken)
	viper.SetDefault("image_model", defaultConfig.ImageModel)
	viper.SetDefault("data_dir", defaultConfig.DataDir)
	viper.SetDefault("prompt_dirs", defaultPromptDirs)
	viper.SetDefault("stream", defaultConfig.Stream)

	for _, key := range []string{
		"openai_base_url",
		"openai_token",
		"gemini_token",
		"anthropic_base_url",
		"anthropic_token",
		"ollama_base_url",
		"image_base_url",
		"image_token",
		"image_model",
		"data_dir",
	} {
		viper.BindEnv(key)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
		return
	}

	// System-wide config first (lower priority)
	for _, path := range []string{"/etc/chatpad", "/usr/local/etc/chatpad"} {
		viper.AddConfigPath(path)
	}
	viper.SetConfigType("toml")
	viper.SetConfigName("config")

	systemConfigLoaded := viper.ReadInConfig() == nil

	// User config is merged on top of the system config
	viper.AddConfigPath(userConfigDir)
	if systemConfigLoaded {
		if err := viper.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
			}
		}
	} else if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}
