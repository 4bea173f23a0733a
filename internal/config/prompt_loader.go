package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Prompt names understood by PromptStore.Get
const (
	PromptEnrichSystem  = "enrichSystem"
	PromptEnrichUser    = "enrichUser"
	PromptGrammarSystem = "grammarSystem"
	PromptGrammarUser   = "grammarUser"
)

// PromptConfig holds inline prompt overrides and the files they can be
// loaded from. A file wins over the inline value.
type PromptConfig struct {
	EnrichSystem      string `mapstructure:"enrichSystem"`
	EnrichSystemFile  string `mapstructure:"enrichSystemFile"`
	EnrichUser        string `mapstructure:"enrichUser"`
	EnrichUserFile    string `mapstructure:"enrichUserFile"`
	GrammarSystem     string `mapstructure:"grammarSystem"`
	GrammarSystemFile string `mapstructure:"grammarSystemFile"`
	GrammarUser       string `mapstructure:"grammarUser"`
	GrammarUserFile   string `mapstructure:"grammarUserFile"`
}

type promptEntry struct {
	name   string
	inline string
	file   string
}

func (p PromptConfig) entries() []promptEntry {
	return []promptEntry{
		{PromptEnrichSystem, p.EnrichSystem, p.EnrichSystemFile},
		{PromptEnrichUser, p.EnrichUser, p.EnrichUserFile},
		{PromptGrammarSystem, p.GrammarSystem, p.GrammarSystemFile},
		{PromptGrammarUser, p.GrammarUser, p.GrammarUserFile},
	}
}

// Files returns every configured prompt file path
func (p PromptConfig) Files() []string {
	var files []string
	for _, e := range p.entries() {
		if e.file != "" {
			files = append(files, e.file)
		}
	}
	return files
}

// validateFiles checks that prompt files exist before loading them
func (p PromptConfig) validateFiles() error {
	var validationErrors []string
	for _, e := range p.entries() {
		if e.file == "" {
			continue
		}
		absPath, err := filepath.Abs(e.file)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", e.name, e.file))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", e.name, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}

// PromptStore holds the prompt overrides in effect. It is safe for
// concurrent use and can be reloaded while the server runs.
type PromptStore struct {
	mu     sync.RWMutex
	config PromptConfig
	loaded map[string]string
}

// NewPromptStore loads every configured prompt file
func NewPromptStore(cfg PromptConfig) (*PromptStore, error) {
	s := &PromptStore{config: cfg}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the override for name, or "" when the built-in default
// should be used. A nil store has no overrides.
func (s *PromptStore) Get(name string) string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded[name]
}

// Files returns the prompt files backing the store
func (s *PromptStore) Files() []string {
	if s == nil {
		return nil
	}
	return s.config.Files()
}

// Reload re-reads every prompt file. On error the previous prompts stay in
// effect.
func (s *PromptStore) Reload() error {
	loaded := make(map[string]string)
	for _, e := range s.config.entries() {
		switch {
		case e.file != "":
			content, err := loadPromptFromFile(e.file, e.name)
			if err != nil {
				return err
			}
			loaded[e.name] = content
		case strings.TrimSpace(e.inline) != "":
			loaded[e.name] = strings.TrimSpace(e.inline)
		}
	}

	s.mu.Lock()
	s.loaded = loaded
	s.mu.Unlock()

	if len(loaded) == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", len(loaded))
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, name string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", name, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s prompt file not found: %s", name, absPath)
		}
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", name, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", name, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s prompt from file: %s (%d characters)",
		name, absPath, len(trimmedContent))

	return trimmedContent, nil
}
