package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/longkey1/chatpad/internal/chatpad"
	"github.com/longkey1/chatpad/internal/chatpad/chat"
	"github.com/longkey1/chatpad/internal/chatpad/config"
	"github.com/longkey1/chatpad/internal/chatpad/conversation"
	"github.com/longkey1/chatpad/internal/chatpad/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var assumeYes bool

// conversationsCmd represents the conversations command
var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Manage conversations",
	Long: `Manage conversations including listing, viewing, editing and deleting them.

Conversation IDs can be given as a full ID, its short form (the last 8
characters shown by 'list'), any prefix of at least 4 characters, or "latest"
for the most recently updated conversation.`,
}

// conversationsListCmd represents the conversations list command
var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all conversations",
	Long:  `List all conversations sorted by most recently updated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openConversations(cmd.Context())
		if err != nil {
			return err
		}

		conversations := store.List()
		if len(conversations) == 0 {
			fmt.Println("No conversations found.")
			fmt.Println("\nStart one with:")
			fmt.Println("  chatpad chat \"your message\"")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMODEL\tUPDATED\tMESSAGES\tNAME")
		fmt.Fprintln(w, "--\t-----\t-------\t--------\t----")
		for _, conv := range conversations {
			modelName := conv.Model
			if modelName == "" {
				modelName = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				conv.GetShortID(),
				modelName,
				conv.UpdatedAt.Format("2006-01-02 15:04"),
				conv.MessageCount(),
				conv.GetDisplayName(),
			)
		}
		w.Flush()

		fmt.Println("\nUse 'chatpad conversations show <id>' to view a conversation.")
		return nil
	},
}

// conversationsShowCmd represents the conversations show command
var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a conversation and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openConversations(cmd.Context())
		if err != nil {
			return err
		}

		conv, err := store.Find(args[0])
		if err != nil {
			return fmt.Errorf("finding conversation: %w", err)
		}

		printConversationInfo(os.Stdout, conv)
		fmt.Println()

		if len(conv.Messages) == 0 {
			fmt.Println("No messages in this conversation.")
			return nil
		}
		render.NewTerminal(os.Stdout).Conversation(conv)

		fmt.Printf("Continue this conversation with:\n  chatpad chat -c %s \"your message\"\n", conv.GetShortID())
		return nil
	},
}

// conversationsDeleteCmd represents the conversations delete command
var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a conversation",
	Long: `Delete a conversation permanently.

Warning: This action cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, store, err := openConversations(ctx)
		if err != nil {
			return err
		}

		conv, err := store.Find(args[0])
		if err != nil {
			return fmt.Errorf("finding conversation: %w", err)
		}

		if !confirm(fmt.Sprintf("Are you sure you want to delete conversation %s (%s)?", conv.GetShortID(), conv.GetDisplayName())) {
			fmt.Println("Deletion cancelled.")
			return nil
		}

		if err := store.Delete(ctx, conv.ID); err != nil {
			return fmt.Errorf("deleting conversation: %w", err)
		}

		fmt.Printf("Conversation %s deleted successfully.\n", conv.GetShortID())
		return nil
	},
}

// conversationsRenameCmd represents the conversations rename command
var conversationsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a conversation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, store, err := openConversations(ctx)
		if err != nil {
			return err
		}

		conv, err := store.Find(args[0])
		if err != nil {
			return fmt.Errorf("finding conversation: %w", err)
		}

		if _, err := store.Rename(ctx, conv.ID, args[1]); err != nil {
			return fmt.Errorf("renaming conversation: %w", err)
		}

		fmt.Printf("Conversation %s renamed to \"%s\".\n", conv.GetShortID(), args[1])
		return nil
	},
}

// conversationsEditCmd represents the conversations edit command
var conversationsEditCmd = &cobra.Command{
	Use:   "edit <id> <message-id> [text]",
	Short: "Edit a message and regenerate the reply",
	Long: `Replace the text of one of your messages, drop every message after it
and stream a new reply.

The message ID is shown next to each message by 'chatpad conversations show'.
If no text is given, EDITOR is opened with the current text.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, store, err := openConversations(ctx)
		if err != nil {
			return err
		}

		conv, err := store.Find(args[0])
		if err != nil {
			return fmt.Errorf("finding conversation: %w", err)
		}

		messageID, ok := conv.FindMessage(args[1])
		if !ok {
			return fmt.Errorf("message %s not found in conversation %s", args[1], conv.GetShortID())
		}

		text := strings.Join(args[2:], " ")
		if text == "" {
			current := conv.Messages[conv.IndexOf(messageID)].Content
			if text, err = editText(current); err != nil {
				return fmt.Errorf("getting message from editor: %w", err)
			}
		}

		svc := newChatService(cfg, store, cfg.Stream)
		updated, err := svc.Edit(ctx, conv.ID, messageID, text, render.NewTerminal(os.Stdout))
		if err != nil {
			return fmt.Errorf("editing message: %w", err)
		}

		if last := updated.Messages[len(updated.Messages)-1]; last.Error {
			return errNoReply
		}
		return nil
	},
}

// conversationsClearCmd represents the conversations clear command
var conversationsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete old conversations",
	Long: `Delete conversations that were last updated before a date.

Examples:
  chatpad conversations clear --before 2025-01-01  # Updated before 2025-01-01
  chatpad conversations clear --before 2025-06     # Updated before 2025-06-01
  chatpad conversations clear --all                # Delete all conversations`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		beforeDateStr, _ := cmd.Flags().GetString("before")
		deleteAll, _ := cmd.Flags().GetBool("all")

		if beforeDateStr == "" && !deleteAll {
			return fmt.Errorf("specify --before <date> or --all")
		}

		_, store, err := openConversations(ctx)
		if err != nil {
			return err
		}

		var toDelete []*chatpad.Conversation
		question := ""
		if deleteAll {
			toDelete = store.List()
			question = fmt.Sprintf("Are you sure you want to delete all %d conversations?", len(toDelete))
		} else {
			beforeDate, err := parseDate(beforeDateStr)
			if err != nil {
				return fmt.Errorf("parsing date: %w", err)
			}
			for _, conv := range store.List() {
				if conv.UpdatedAt.Before(beforeDate) {
					toDelete = append(toDelete, conv)
				}
			}
			question = fmt.Sprintf("Are you sure you want to delete %d conversations updated before %s?",
				len(toDelete), beforeDate.Format("2006-01-02"))
		}

		if len(toDelete) == 0 {
			fmt.Println("No conversations to delete.")
			return nil
		}
		if !confirm(question) {
			fmt.Println("Deletion cancelled.")
			return nil
		}

		deleted := 0
		for _, conv := range toDelete {
			if err := store.Delete(ctx, conv.ID); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to delete conversation %s: %v\n", conv.GetShortID(), err)
				continue
			}
			deleted++
		}

		fmt.Printf("Successfully deleted %d conversations.\n", deleted)
		return nil
	},
}

// conversationsStartCmd represents the conversations start command
var conversationsStartCmd = &cobra.Command{
	Use:   "start [id]",
	Short: "Chat interactively",
	Long: `Start an interactive chat, either in a new conversation or continuing an
existing one.

Examples:
  chatpad conversations start            # Start a new conversation
  chatpad conversations start 9c4d1a2b   # Continue a conversation
  chatpad conversations start latest     # Continue the latest conversation`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, store, err := openConversations(ctx)
		if err != nil {
			return err
		}

		var conv *chatpad.Conversation
		if len(args) > 0 {
			conv, err = store.Find(args[0])
			if err != nil {
				return fmt.Errorf("finding conversation: %w", err)
			}
		}

		svc := newChatService(cfg, store, cfg.Stream && !noStream)
		session := &interactiveSession{
			ctx:   ctx,
			svc:   svc,
			store: store,
			model: cfg.Model,
			conv:  conv,
			in:    os.Stdin,
			out:   os.Stderr,
			term:  render.NewTerminal(os.Stdout),
		}
		if cmd.Flags().Changed("model") {
			if _, _, err := chatpad.ParseModelString(model); err != nil {
				return fmt.Errorf("invalid model from flag: %w", err)
			}
			session.model = model
		}

		return session.run()
	},
}

// interactiveSession is the read-eval loop of 'conversations start'.
type interactiveSession struct {
	ctx   context.Context
	svc   *chat.Service
	store *conversation.Store
	model string
	conv  *chatpad.Conversation // nil until the first message
	in    io.Reader
	out   io.Writer
	term  *render.Terminal
}

func (s *interactiveSession) run() error {
	fmt.Fprintln(s.out, "\n=== chatpad ===")
	if s.conv != nil {
		fmt.Fprintf(s.out, "Conversation: %s (%s)\n", s.conv.GetShortID(), s.conv.GetDisplayName())
		s.term.Conversation(s.conv)
	}
	fmt.Fprintln(s.out, "Type '/help' for commands, '/exit' or 'Ctrl+D' to quit")
	fmt.Fprintln(s.out, "Ctrl+C while a reply streams cancels it")
	fmt.Fprintln(s.out)

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "You> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			fmt.Fprintln(s.out, "\nGoodbye!")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if !s.handleCommand(input) {
				return nil
			}
			continue
		}

		s.send(input)
	}
}

// turnContext is cancelled by Ctrl+C for the duration of one reply only.
func (s *interactiveSession) turnContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.WithoutCancel(s.ctx), os.Interrupt)
}

func (s *interactiveSession) send(text string) {
	ctx, stop := s.turnContext()
	defer stop()

	if s.conv == nil {
		conv, err := s.svc.Start(ctx, text, s.model, "", "")
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		s.conv = conv
		logger.Debug("conversation created", zap.String("id", conv.ID))
	}

	conv, err := s.svc.Send(ctx, s.conv.ID, text, s.term)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.conv = conv
}

func (s *interactiveSession) edit(args string) {
	if s.conv == nil {
		fmt.Fprintln(s.out, "Nothing to edit yet.")
		return
	}

	ref, text, _ := strings.Cut(args, " ")
	text = strings.TrimSpace(text)
	if ref == "" || text == "" {
		fmt.Fprintln(s.out, "Usage: /edit <message-id> <new text>")
		return
	}

	messageID, ok := s.conv.FindMessage(ref)
	if !ok {
		fmt.Fprintf(s.out, "Message %s not found (see /history)\n", ref)
		return
	}

	ctx, stop := s.turnContext()
	defer stop()

	conv, err := s.svc.Edit(ctx, s.conv.ID, messageID, text, s.term)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.conv = conv
}

// handleCommand processes special commands in interactive mode
// Returns true to continue the loop, false to exit
func (s *interactiveSession) handleCommand(input string) bool {
	command, args, _ := strings.Cut(input, " ")
	command = strings.ToLower(command)

	switch command {
	case "/help", "/h":
		fmt.Fprintln(s.out, "\nAvailable commands:")
		fmt.Fprintln(s.out, "  /help, /h            - Show this help message")
		fmt.Fprintln(s.out, "  /info, /i            - Show conversation information")
		fmt.Fprintln(s.out, "  /history             - Show all messages with their IDs")
		fmt.Fprintln(s.out, "  /edit <id> <text>    - Edit one of your messages and regenerate the reply")
		fmt.Fprintln(s.out, "  /rename <name>       - Rename the conversation")
		fmt.Fprintln(s.out, "  /clear, /c           - Clear screen")
		fmt.Fprintln(s.out, "  /exit, /quit         - Exit interactive mode")
		fmt.Fprintln(s.out, "  Ctrl+D               - Exit interactive mode")
		fmt.Fprintln(s.out)

	case "/info", "/i":
		if s.conv == nil {
			fmt.Fprintf(s.out, "\nNo messages yet. Model: %s\n\n", s.model)
			return true
		}
		fmt.Fprintln(s.out)
		printConversationInfo(s.out, s.conv)
		fmt.Fprintln(s.out)

	case "/history":
		if s.conv == nil {
			fmt.Fprintln(s.out, "No messages yet.")
			return true
		}
		s.term.Conversation(s.conv)

	case "/edit":
		s.edit(strings.TrimSpace(args))

	case "/rename":
		name := strings.TrimSpace(args)
		if s.conv == nil || name == "" {
			fmt.Fprintln(s.out, "Usage: /rename <name> (after the first message)")
			return true
		}
		conv, err := s.store.Rename(s.ctx, s.conv.ID, name)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return true
		}
		s.conv = conv
		fmt.Fprintf(s.out, "Renamed to \"%s\".\n", name)

	case "/clear", "/c":
		fmt.Print("\033[H\033[2J")

	case "/exit", "/quit", "/q":
		fmt.Fprintln(s.out, "Goodbye!")
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type '/help' for available commands)\n", command)
	}
	return true
}

func printConversationInfo(w io.Writer, conv *chatpad.Conversation) {
	fmt.Fprintf(w, "Conversation: %s\n", conv.ID)
	fmt.Fprintf(w, "Name: %s\n", conv.GetDisplayName())
	if conv.Model != "" {
		fmt.Fprintf(w, "Model: %s\n", conv.Model)
	}
	fmt.Fprintf(w, "Created: %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Updated: %s\n", conv.UpdatedAt.Format("2006-01-02 15:04:05"))
	if conv.TemplateName != "" {
		fmt.Fprintf(w, "Template: %s\n", conv.TemplateName)
	}
	if conv.SystemPrompt != "" {
		fmt.Fprintf(w, "System Prompt: %s\n", conv.SystemPrompt)
	}
	fmt.Fprintf(w, "Messages: %d\n", conv.MessageCount())
}

func openConversations(ctx context.Context) (*config.Config, *conversation.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	store, err := loadConversations(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// confirm asks a yes/no question on stderr. --yes answers it.
func confirm(question string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// parseDate parses a date string in various formats and returns a time.Time
// Supported formats: YYYY-MM-DD, YYYY-MM, YYYY
func parseDate(dateStr string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.ParseInLocation(layout, dateStr, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("invalid date format: " + dateStr + " (use YYYY-MM-DD, YYYY-MM, or YYYY)")
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsShowCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)
	conversationsCmd.AddCommand(conversationsRenameCmd)
	conversationsCmd.AddCommand(conversationsEditCmd)
	conversationsCmd.AddCommand(conversationsClearCmd)
	conversationsCmd.AddCommand(conversationsStartCmd)

	conversationsCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	conversationsClearCmd.Flags().String("before", "", "Delete conversations last updated before this date (format: YYYY-MM-DD, YYYY-MM, or YYYY)")
	conversationsClearCmd.Flags().Bool("all", false, "Delete all conversations")

	conversationsStartCmd.Flags().StringVarP(&model, "model", "m", "", "Model for a new conversation (format: provider:model)")
	conversationsStartCmd.Flags().BoolVar(&noStream, "no-stream", false, "Wait for whole replies instead of streaming them")
}
