package prompt

import (
	"fmt"
	"strings"

	"github.com/longkey1/chatpad/internal/chatpad"
)

// Rendered is a template with every placeholder substituted.
type Rendered struct {
	Name         string
	SystemPrompt string
	UserMessage  string
	Model        string // empty when the template does not pin a model
}

// Format fills the named template with message (as {{input}}) and args
// ("key:value" pairs). Without a template name the message is passed through.
func Format(message, name string, dirs []string, args []string) (*Rendered, error) {
	if name == "" {
		return &Rendered{UserMessage: message}, nil
	}

	path, err := Find(name, dirs)
	if err != nil {
		return nil, err
	}

	tmpl, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading prompt file: %w", err)
	}

	return Apply(tmpl, name, message, args)
}

// Apply substitutes placeholders in tmpl.
func Apply(tmpl *Template, name, message string, args []string) (*Rendered, error) {
	argMap, err := processArgs(args)
	if err != nil {
		return nil, fmt.Errorf("error processing arguments: %w", err)
	}

	replacements := make(map[string]string, len(argMap)+1)
	replacements["input"] = message
	for key, value := range argMap {
		replacements[key] = value
	}

	systemPrompt := tmpl.System
	userMessage := tmpl.User
	for key, value := range replacements {
		placeholder := fmt.Sprintf("{{%s}}", key)
		systemPrompt = strings.ReplaceAll(systemPrompt, placeholder, value)
		userMessage = strings.ReplaceAll(userMessage, placeholder, value)
	}
	if strings.TrimSpace(userMessage) == "" {
		userMessage = message
	}

	rendered := &Rendered{
		Name:         name,
		SystemPrompt: systemPrompt,
		UserMessage:  userMessage,
	}
	if tmpl.Model != nil {
		if _, _, err := chatpad.ParseModelString(*tmpl.Model); err != nil {
			return nil, fmt.Errorf("invalid model format in prompt template: %w", err)
		}
		rendered.Model = *tmpl.Model
	}
	return rendered, nil
}

// processArgs parses "key:value" arguments. Values may escape ':' and '"'.
func processArgs(args []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`) {
			arg = strings.Trim(arg, `"`)
		}

		parts := strings.SplitN(arg, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid argument format: %s. Expected format: key:value", arg)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.ReplaceAll(value, `\:`, ":")
		value = strings.ReplaceAll(value, `\"`, `"`)

		if key == "input" {
			return nil, fmt.Errorf("'input' is a reserved keyword and cannot be used as a key")
		}
		result[key] = value
	}
	return result, nil
}
