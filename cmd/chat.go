/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/longkey1/chatpad/internal/chatpad"
	"github.com/longkey1/chatpad/internal/chatpad/config"
	promptpkg "github.com/longkey1/chatpad/internal/chatpad/prompt"
	"github.com/longkey1/chatpad/internal/chatpad/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	model          string
	prompt         string
	argFlags       []string
	useEditor      bool
	conversationID string
	noStream       bool
)

// errNoReply is returned when the assistant reply was replaced by an error message.
var errNoReply = errors.New("no reply was received (run with --verbose for details)")

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message and stream the reply",
	Long: `Send a message to the model and print the reply as it arrives.

Without --conversation a new conversation is started, named after the first
30 characters of the message. With --conversation the message is added to an
existing conversation and the whole history is sent.

If no message is provided as an argument, it reads from stdin.
If --editor flag is set, it opens the default editor (from EDITOR environment variable) to compose the message.

The prompt file should be in TOML format with the following structure:
system = "System prompt with optional {{input}} placeholder"
user = "User prompt with optional {{input}} placeholder"
model = "optional-model-name"  # Optional: overrides the default model for this prompt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if conversationID != "" && prompt != "" {
			return fmt.Errorf("cannot use --prompt with an existing conversation")
		}

		message, err := readMessage(args)
		if err != nil {
			return err
		}
		if message == "" {
			return fmt.Errorf("message is empty")
		}

		store, err := loadConversations(ctx, cfg)
		if err != nil {
			return err
		}
		svc := newChatService(cfg, store, cfg.Stream && !noStream)
		term := render.NewTerminal(os.Stdout)

		var conv *chatpad.Conversation
		if conversationID != "" {
			existing, err := store.Find(conversationID)
			if err != nil {
				return fmt.Errorf("finding conversation: %w", err)
			}
			logger.Debug("continuing conversation",
				zap.String("id", existing.ID),
				zap.String("model", existing.Model))

			conv, err = svc.Send(ctx, existing.ID, message, term)
			if err != nil {
				return fmt.Errorf("sending message: %w", err)
			}
		} else {
			rendered, err := promptpkg.Format(message, prompt, cfg.PromptDirs, argFlags)
			if err != nil {
				return fmt.Errorf("formatting message with prompt: %w", err)
			}

			// flag > prompt template > config file
			selected := cfg.Model
			if rendered.Model != "" {
				selected = rendered.Model
			}
			if cmd.Flags().Changed("model") {
				if _, _, err := chatpad.ParseModelString(model); err != nil {
					return fmt.Errorf("invalid model from flag: %w", err)
				}
				selected = model
			}

			started, err := svc.Start(ctx, rendered.UserMessage, selected, rendered.SystemPrompt, rendered.Name)
			if err != nil {
				return fmt.Errorf("starting conversation: %w", err)
			}
			logger.Debug("conversation created",
				zap.String("id", started.ID),
				zap.String("model", started.Model))

			conv, err = svc.Send(ctx, started.ID, rendered.UserMessage, term)
			if err != nil {
				return fmt.Errorf("sending message: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Conversation: %s\n", conv.GetShortID())
			fmt.Fprintf(os.Stderr, "Continue with:\n  chatpad chat -c %s \"your message\"\n", conv.GetShortID())
		}

		if last := conv.Messages[len(conv.Messages)-1]; last.Error {
			return errNoReply
		}
		return nil
	},
}

// readMessage returns the message from the editor, the arguments or stdin, in that order.
func readMessage(args []string) (string, error) {
	if useEditor {
		message, err := getMessageFromEditor()
		if err != nil {
			return "", fmt.Errorf("getting message from editor: %w", err)
		}
		return message, nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading from stdin: %w", err)
	}
	return strings.TrimSpace(string(input)), nil
}

// getMessageFromEditor opens the default editor and returns the edited message
func getMessageFromEditor() (string, error) {
	return editText("")
}

// editText opens EDITOR on a temporary file holding initial and returns the result.
func editText(initial string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return "", fmt.Errorf("EDITOR environment variable is not set")
	}

	tmpFile, err := os.CreateTemp("", "chatpad-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(initial); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}
	tmpFile.Close()

	cmd := exec.Command(editor, tmpFile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %w", err)
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %w", err)
	}

	return strings.TrimSpace(string(content)), nil
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&model, "model", "m", "", "Model to use (format: provider:model, e.g., openai:gpt-4.1)")
	chatCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Name of the prompt template (without .toml extension)")
	chatCmd.Flags().StringArrayVar(&argFlags, "arg", []string{}, "Key-value pairs for prompt template (format: key:value)")
	chatCmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "Use default editor (from EDITOR environment variable) to compose message")
	chatCmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Conversation ID (short or full ID, or 'latest' for the most recent conversation)")
	chatCmd.Flags().BoolVar(&noStream, "no-stream", false, "Wait for the whole reply instead of streaming it")
}
