/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/longkey1/chatpad/internal/chatpad/config"
	promptpkg "github.com/longkey1/chatpad/internal/chatpad/prompt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var withDir bool

// promptCmd represents the prompt command
var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "List available prompt templates",
	Long: `List all available prompt templates from the configured prompt directories.
Prompt directories are scanned recursively for .toml files.

The prompt files should be in TOML format with the following structure:
system = "System prompt with optional {{input}} placeholder"
user = "User prompt with optional {{input}} placeholder"
model = "optional provider:model"

Prompt names are displayed as relative paths from the prompt directory root.
For example, a file at ${prompt_dir}/foo/bar.toml will be displayed as "foo/bar".
When a name exists in several directories, the later directory wins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.Debug("scanning prompt directories", zap.Strings("dirs", cfg.PromptDirs))

		entries, err := promptpkg.List(cfg.PromptDirs)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No prompt templates found.")
			fmt.Println("Create .toml files in the following directories:")
			for _, promptDir := range cfg.PromptDirs {
				fmt.Printf("  - %s\n", promptDir)
			}
			return nil
		}

		fmt.Printf("Available prompt templates (%d found):\n\n", len(entries))
		for _, entry := range entries {
			if withDir {
				fmt.Printf("  %s (from %s)\n", entry.Name, entry.Dir)
			} else {
				fmt.Printf("  %s\n", entry.Name)
			}
		}

		fmt.Printf("\nUse a prompt template with: chatpad chat --prompt <name> [message]\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().BoolVar(&withDir, "with-dir", false, "Show the directory each prompt was found in")
}
