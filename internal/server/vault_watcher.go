package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"resumescan/internal/config"
	"resumescan/internal/errors"
)

// apiKeysField is the Vault secret field holding comma separated keys
const apiKeysField = "keys"

// VaultSecretReader is the part of the Vault client the watcher needs
type VaultSecretReader interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// APIKeyWatcher polls a Vault KV v2 secret and pushes the API keys it
// holds whenever the secret version moves forward
type APIKeyWatcher struct {
	mu sync.RWMutex

	client       VaultSecretReader
	secretPath   string
	pollInterval time.Duration
	apply        func([]string)
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
}

// NewAPIKeyWatcher creates a watcher that calls apply with each new key set
func NewAPIKeyWatcher(client VaultSecretReader, secretPath string, pollInterval time.Duration, apply func([]string), logger *errors.Logger) *APIKeyWatcher {
	return &APIKeyWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		apply:        apply,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start begins polling Vault for secret changes
func (kw *APIKeyWatcher) Start() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	if kw.running {
		return fmt.Errorf("api key watcher is already running")
	}
	kw.running = true
	go kw.pollLoop()
	kw.logger.Info("API key watcher started", "secret_path", kw.secretPath, "poll_interval", kw.pollInterval)
	return nil
}

// Stop stops the watcher
func (kw *APIKeyWatcher) Stop() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	if !kw.running {
		return nil
	}
	close(kw.stopChan)
	kw.running = false
	kw.logger.Info("API key watcher stopped")
	return nil
}

func (kw *APIKeyWatcher) pollLoop() {
	ticker := time.NewTicker(kw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := kw.poll(); err != nil {
				kw.logger.LogError(err, "Failed to check Vault for API key updates")
			}
		case <-kw.stopChan:
			return
		}
	}
}

// poll reads the secret once and applies it when its version is newer
// than the last one seen. An empty key list is not applied, so a bad
// rotation cannot silently switch authentication off.
func (kw *APIKeyWatcher) poll() (bool, error) {
	secret, err := kw.client.GetSecretV2(kw.secretPath)
	if err != nil {
		return false, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil {
		return false, fmt.Errorf("secret %s not found", kw.secretPath)
	}

	kw.mu.Lock()
	if secret.Version <= kw.lastVersion {
		kw.mu.Unlock()
		return false, nil
	}
	kw.lastVersion = secret.Version
	kw.mu.Unlock()

	raw, _ := secret.Data[apiKeysField].(string)
	keys := parseKeyList(raw)
	if len(keys) == 0 {
		kw.logger.Warn("Vault API key secret is empty, keeping current keys",
			"path", kw.secretPath, "version", secret.Version)
		return false, nil
	}

	kw.apply(keys)
	kw.logger.Info("API keys rotated from Vault", "count", len(keys), "version", secret.Version)
	return true, nil
}

// Status returns the watcher state for diagnostics
func (kw *APIKeyWatcher) Status() map[string]any {
	kw.mu.RLock()
	defer kw.mu.RUnlock()
	return map[string]any{
		"running":       kw.running,
		"poll_interval": kw.pollInterval.String(),
		"secret_path":   kw.secretPath,
		"last_version":  kw.lastVersion,
	}
}

func parseKeyList(raw string) []string {
	var keys []string
	for part := range strings.SplitSeq(raw, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
