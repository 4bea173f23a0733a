package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resumescan/internal/analysis"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFileDefaults(t *testing.T) {
	cfg, err := LoadConfigFile(writeConfig(t, "app:\n  logLevel: debug\n"))
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}

	if cfg.App.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.App.LogLevel)
	}
	if cfg.Analysis.Weights != analysis.DefaultWeights() {
		t.Errorf("Weights = %+v, want defaults", cfg.Analysis.Weights)
	}
	if cfg.Analysis.Penalties != analysis.DefaultPenalties() {
		t.Errorf("Penalties = %+v, want defaults", cfg.Analysis.Penalties)
	}
	if cfg.Analysis.EnrichmentTimeout != analysis.DefaultEnrichmentTimeout {
		t.Errorf("EnrichmentTimeout = %v", cfg.Analysis.EnrichmentTimeout)
	}
	if cfg.Analysis.SuggestionLimit != 8 {
		t.Errorf("SuggestionLimit = %d, want 8", cfg.Analysis.SuggestionLimit)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Observability.ServiceInstance == "" {
		t.Error("ServiceInstance should be derived when unset")
	}
}

func TestLoadConfigFileEnvOverride(t *testing.T) {
	t.Setenv("RESUMESCAN_SERVER_PORT", "9191")
	t.Setenv("RESUMESCAN_SERVER_APIKEYS", "alpha, beta")
	t.Setenv("RESUMESCAN_ANALYSIS_ENRICHMENTTIMEOUT", "3s")

	cfg, err := LoadConfigFile(writeConfig(t, "server:\n  host: 0.0.0.0\n"))
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}

	if cfg.Server.Port != "9191" {
		t.Errorf("Port = %q, want 9191", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if len(cfg.Server.APIKeys) != 2 || cfg.Server.APIKeys[0] != "alpha" || cfg.Server.APIKeys[1] != "beta" {
		t.Errorf("APIKeys = %v, want [alpha beta]", cfg.Server.APIKeys)
	}
	if cfg.Analysis.EnrichmentTimeout != 3*time.Second {
		t.Errorf("EnrichmentTimeout = %v, want 3s", cfg.Analysis.EnrichmentTimeout)
	}
}

func TestLoadConfigFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "weights do not sum to one",
			yaml:    "analysis:\n  weights:\n    keywords: 0.5\n",
			wantErr: "must sum to 1.0",
		},
		{
			name:    "unknown provider",
			yaml:    "ai:\n  provider: llama\n",
			wantErr: "Provider",
		},
		{
			name:    "bad log level",
			yaml:    "app:\n  logLevel: verbose\n",
			wantErr: "LogLevel",
		},
		{
			name:    "ai enabled without key",
			yaml:    "ai:\n  enabled: true\n  provider: openai\n",
			wantErr: "ai.apiKey is required",
		},
		{
			name:    "missing prompt file",
			yaml:    "ai:\n  customPrompts:\n    enrichSystemFile: /nonexistent/prompt.md\n",
			wantErr: "prompt file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			_, err := LoadConfigFile(writeConfig(t, tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfigFile() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestProviderKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := LoadConfigFile(writeConfig(t, "ai:\n  enabled: true\n  provider: openai\n"))
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.AI.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want OPENAI_API_KEY value", cfg.AI.APIKey)
	}
}

func TestResolveOperationConfig(t *testing.T) {
	grammarTimeout := 5 * time.Second
	temp := float32(0)
	ai := AIConfig{
		Provider:    ProviderGemini,
		Timeout:     30 * time.Second,
		APIKey:      "global",
		MaxRetries:  3,
		Temperature: 0.4,
		Grammar: OperationAIConfig{
			Provider:    ProviderOpenAI,
			Timeout:     &grammarTimeout,
			Temperature: &temp,
		},
	}

	enrich := ai.GetEnrichConfig()
	if enrich.Operation != OperationEnrich || enrich.Provider != ProviderGemini {
		t.Errorf("enrich = %+v", enrich)
	}
	if enrich.Model != DefaultModel(ProviderGemini) {
		t.Errorf("enrich model = %q, want provider default", enrich.Model)
	}
	if enrich.Temperature != 0.4 || enrich.Timeout != 30*time.Second {
		t.Errorf("enrich should inherit globals, got %+v", enrich)
	}

	grammar := ai.GetGrammarConfig()
	if grammar.Provider != ProviderOpenAI || grammar.Model != DefaultModel(ProviderOpenAI) {
		t.Errorf("grammar provider/model = %s/%s", grammar.Provider, grammar.Model)
	}
	if grammar.Timeout != grammarTimeout {
		t.Errorf("grammar timeout = %v, want %v", grammar.Timeout, grammarTimeout)
	}
	if grammar.Temperature != 0 {
		t.Errorf("explicit zero temperature should override, got %v", grammar.Temperature)
	}
	if grammar.APIKey != "global" || grammar.MaxRetries != 3 {
		t.Errorf("grammar should inherit key and retries, got %+v", grammar)
	}
}

func TestEngineOptionsApply(t *testing.T) {
	a := AnalysisConfig{
		Weights:           analysis.DefaultWeights(),
		Penalties:         analysis.DefaultPenalties(),
		EnrichmentTimeout: time.Second,
		SuggestionLimit:   3,
		ContextWindow:     10,
	}
	if got := len(a.EngineOptions()); got != 5 {
		t.Errorf("EngineOptions() returned %d options, want 5", got)
	}
}
