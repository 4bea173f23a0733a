package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writePrompt(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write prompt file: %v", err)
	}
}

func TestPromptStoreLoadsFilesOverInline(t *testing.T) {
	dir := t.TempDir()
	systemFile := filepath.Join(dir, "enrich.system.md")
	writePrompt(t, systemFile, "  You are a strict ATS.  \n")

	store, err := NewPromptStore(PromptConfig{
		EnrichSystem:     "inline system prompt",
		EnrichSystemFile: systemFile,
		GrammarUser:      "inline grammar user prompt",
	})
	if err != nil {
		t.Fatalf("NewPromptStore() error = %v", err)
	}

	if got := store.Get(PromptEnrichSystem); got != "You are a strict ATS." {
		t.Errorf("enrich system prompt = %q, want file content", got)
	}
	if got := store.Get(PromptGrammarUser); got != "inline grammar user prompt" {
		t.Errorf("grammar user prompt = %q, want inline value", got)
	}
	if got := store.Get(PromptEnrichUser); got != "" {
		t.Errorf("unset prompt = %q, want empty", got)
	}
}

func TestPromptStoreErrors(t *testing.T) {
	dir := t.TempDir()
	emptyFile := filepath.Join(dir, "empty.md")
	writePrompt(t, emptyFile, "  \n\t")

	tests := []struct {
		name    string
		cfg     PromptConfig
		wantErr string
	}{
		{"missing file", PromptConfig{GrammarSystemFile: filepath.Join(dir, "nope.md")}, "not found"},
		{"empty file", PromptConfig{EnrichUserFile: emptyFile}, "is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPromptStore(tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewPromptStore() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestPromptStoreReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "grammar.system.md")
	writePrompt(t, file, "first")

	store, err := NewPromptStore(PromptConfig{GrammarSystemFile: file})
	if err != nil {
		t.Fatalf("NewPromptStore() error = %v", err)
	}

	writePrompt(t, file, "second")
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := store.Get(PromptGrammarSystem); got != "second" {
		t.Errorf("after reload = %q, want %q", got, "second")
	}

	writePrompt(t, file, "")
	if err := store.Reload(); err == nil {
		t.Fatal("Reload() of empty file should fail")
	}
	if got := store.Get(PromptGrammarSystem); got != "second" {
		t.Errorf("after failed reload = %q, want previous %q", got, "second")
	}
}

func TestNilPromptStore(t *testing.T) {
	var store *PromptStore
	if got := store.Get(PromptEnrichSystem); got != "" {
		t.Errorf("nil store Get() = %q, want empty", got)
	}
	if files := store.Files(); files != nil {
		t.Errorf("nil store Files() = %v, want nil", files)
	}
}

func TestPromptWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "enrich.user.md")
	writePrompt(t, file, "v1")

	store, err := NewPromptStore(PromptConfig{EnrichUserFile: file})
	if err != nil {
		t.Fatalf("NewPromptStore() error = %v", err)
	}

	reloaded := make(chan error, 4)
	watcher := NewPromptWatcher(store, 20*time.Millisecond, func(err error) { reloaded <- err }, nil)
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	if !watcher.IsRunning() {
		t.Fatal("watcher should be running")
	}

	writePrompt(t, file, "v2")

	select {
	case err := <-reloaded:
		if err != nil {
			t.Fatalf("reload error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for prompt reload")
	}

	if got := store.Get(PromptEnrichUser); got != "v2" {
		t.Errorf("prompt after reload = %q, want %q", got, "v2")
	}
}

func TestPromptWatcherWithoutFiles(t *testing.T) {
	store, err := NewPromptStore(PromptConfig{})
	if err != nil {
		t.Fatalf("NewPromptStore() error = %v", err)
	}
	watcher := NewPromptWatcher(store, 0, nil, nil)
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if watcher.IsRunning() {
		t.Error("watcher with no files should not run")
	}
	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
