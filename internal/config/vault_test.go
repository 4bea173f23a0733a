package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	strings map[string]string
	slices  map[string][]string
}

func (f fakeSecrets) GetStringSecret(path, key string) (string, error) {
	v, ok := f.strings[path+"#"+key]
	if !ok {
		return "", fmt.Errorf("secret not found at path: %s", path)
	}
	return v, nil
}

func (f fakeSecrets) GetStringSliceSecret(path, key string) ([]string, error) {
	v, ok := f.slices[path+"#"+key]
	if !ok {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return v, nil
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(7), expected: 7},
		{name: "string value", input: "13", expected: 13},
		{name: "invalid string value", input: "v2", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/data/resumescan/ai")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, nil)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file is trimmed", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, nil)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, nil)
		assert.ErrorContains(t, err, "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, nil)
		assert.ErrorContains(t, err, "vault token is required")
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{AI: AIConfig{APIKey: "from-env"}}
	require.NoError(t, ApplyVaultSecrets(cfg, nil))
	assert.Equal(t, "from-env", cfg.AI.APIKey)
}

func TestApplySecrets(t *testing.T) {
	newConfig := func() *Config {
		return &Config{
			AI: AIConfig{
				APIKey:  "from-env",
				Grammar: OperationAIConfig{APIKey: "grammar-only"},
			},
			Vault: VaultConfig{
				Enabled: true,
				Secrets: VaultSecrets{APIKeys: "kv/api-keys", AIKey: "kv/ai"},
			},
		}
	}

	t.Run("applies both secrets", func(t *testing.T) {
		cfg := newConfig()
		src := fakeSecrets{
			strings: map[string]string{"kv/ai#api_key": "vault-ai-key"},
			slices:  map[string][]string{"kv/api-keys#keys": {"k1", "k2"}},
		}
		require.NoError(t, applySecrets(src, cfg, nil))

		assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
		assert.Equal(t, "vault-ai-key", cfg.AI.APIKey)
		assert.Equal(t, "vault-ai-key", cfg.AI.Enrich.APIKey)
		assert.Equal(t, "grammar-only", cfg.AI.Grammar.APIKey, "explicit operation key wins")
	})

	t.Run("empty values keep existing config", func(t *testing.T) {
		cfg := newConfig()
		src := fakeSecrets{
			strings: map[string]string{"kv/ai#api_key": ""},
			slices:  map[string][]string{"kv/api-keys#keys": {}},
		}
		require.NoError(t, applySecrets(src, cfg, nil))
		assert.Empty(t, cfg.Server.APIKeys)
		assert.Equal(t, "from-env", cfg.AI.APIKey)
	})

	t.Run("missing secret is an error", func(t *testing.T) {
		cfg := newConfig()
		err := applySecrets(fakeSecrets{}, cfg, nil)
		assert.ErrorContains(t, err, "failed to load API keys from vault")
	})
}

func TestVaultClientExtractSecretData(t *testing.T) {
	vc := &VaultClient{}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    map[string]any
	}{
		{
			name: "valid KVv2 secret",
			secret: &api.Secret{Data: map[string]any{
				"data": map[string]any{"api_key": "abc"},
			}},
			expected: map[string]any{"api_key": "abc"},
		},
		{
			name:        "missing data field",
			secret:      &api.Secret{Data: map[string]any{"metadata": map[string]any{}}},
			expectError: true,
		},
		{
			name:        "data field wrong type",
			secret:      &api.Secret{Data: map[string]any{"data": "not-a-map"}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vc.extractSecretData(tt.secret, "secret/test")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetSecretV2NilClient(t *testing.T) {
	var vc *VaultClient
	_, err := vc.GetSecretV2("secret/test")
	assert.ErrorContains(t, err, "vault client not initialized")
}
