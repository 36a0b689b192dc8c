package prompt

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name+".toml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFormat(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "translate", `
system = "Translate into {{lang}}."
user = "Text: {{input}}"
model = "openai:gpt-4.1-mini"
`)
	writePrompt(t, dir, "bad-model", `
system = "x"
user = "{{input}}"
model = "gpt-4.1"
`)
	writePrompt(t, dir, "system-only", `system = "Be terse."`)

	tests := []struct {
		name       string
		template   string
		args       []string
		wantSystem string
		wantUser   string
		wantModel  string
		wantErr    bool
	}{
		{name: "no template", template: "", wantUser: "hello"},
		{
			name:       "placeholders",
			template:   "translate",
			args:       []string{"lang:French"},
			wantSystem: "Translate into French.",
			wantUser:   "Text: hello",
			wantModel:  "openai:gpt-4.1-mini",
		},
		{name: "system only keeps message", template: "system-only", wantSystem: "Be terse.", wantUser: "hello"},
		{name: "bad model", template: "bad-model", wantErr: true},
		{name: "missing template", template: "nope", wantErr: true},
		{name: "reserved arg", template: "translate", args: []string{"input:x"}, wantErr: true},
		{name: "malformed arg", template: "translate", args: []string{"lang"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format("hello", tt.template, []string{dir}, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Format() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.SystemPrompt != tt.wantSystem {
				t.Errorf("SystemPrompt = %q, want %q", got.SystemPrompt, tt.wantSystem)
			}
			if got.UserMessage != tt.wantUser {
				t.Errorf("UserMessage = %q, want %q", got.UserMessage, tt.wantUser)
			}
			if got.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", got.Model, tt.wantModel)
			}
		})
	}
}

func TestProcessArgsEscapes(t *testing.T) {
	got, err := processArgs([]string{`url:http\://example.com`, `"note:a\:b \"c\" d"`})
	if err != nil {
		t.Fatalf("processArgs() error = %v", err)
	}
	if got["url"] != "http://example.com" {
		t.Errorf("url = %q", got["url"])
	}
	if got["note"] != `a:b "c" d` {
		t.Errorf("note = %q", got["note"])
	}
}

func TestFindLaterDirectoryWins(t *testing.T) {
	system, user := t.TempDir(), t.TempDir()
	writePrompt(t, system, "review", `system = "system"`)
	writePrompt(t, user, "review", `system = "user"`)

	path, err := Find("review", []string{system, user})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if path != filepath.Join(user, "review.toml") {
		t.Errorf("Find() = %q", path)
	}
}

func TestList(t *testing.T) {
	system, user := t.TempDir(), t.TempDir()
	writePrompt(t, system, "review", `system = "system"`)
	writePrompt(t, system, "code/go", `system = "go"`)
	writePrompt(t, user, "review", `system = "user"`)
	if err := os.WriteFile(filepath.Join(user, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := List([]string{system, user, filepath.Join(user, "missing")})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []Entry{
		{Name: "code/go", Dir: system},
		{Name: "review", Dir: user},
	}
	if len(entries) != len(want) {
		t.Fatalf("List() = %+v, want %+v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}
