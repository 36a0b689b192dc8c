// Package prompt loads TOML prompt templates that seed a conversation.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const fileExt = ".toml"

// Template represents the structure of a TOML prompt file
type Template struct {
	System string  `toml:"system"`
	User   string  `toml:"user"`
	Model  *string `toml:"model,omitempty"`
}

// Entry is a template found in one of the prompt directories.
type Entry struct {
	Name string // path relative to Dir, without extension, slash separated
	Dir  string
}

// Load decodes a prompt file.
func Load(filePath string) (*Template, error) {
	var tmpl Template
	if _, err := toml.DecodeFile(filePath, &tmpl); err != nil {
		return nil, fmt.Errorf("error decoding prompt file: %w", err)
	}
	return &tmpl, nil
}

// Find returns the path of the named template. Later directories take
// precedence over earlier ones.
func Find(name string, dirs []string) (string, error) {
	file := name
	if !strings.HasSuffix(file, fileExt) {
		file += fileExt
	}

	var found string
	for _, dir := range dirs {
		candidate := filepath.Join(dir, file)
		if _, err := os.Stat(candidate); err == nil {
			found = candidate
		}
	}
	if found == "" {
		return "", fmt.Errorf("prompt file '%s' not found in any of the prompt directories: %v", file, dirs)
	}
	return found, nil
}

// List walks dirs for templates, sorted by name. A name present in several
// directories is reported once, from the directory that Find would use.
// Missing directories are skipped.
func List(dirs []string) ([]Entry, error) {
	byName := make(map[string]string)

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return nil
			}
			byName[filepath.ToSlash(strings.TrimSuffix(rel, fileExt))] = dir
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking prompt directory %s: %w", dir, err)
		}
	}

	entries := make([]Entry, 0, len(byName))
	for name, dir := range byName {
		entries = append(entries, Entry{Name: name, Dir: dir})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
