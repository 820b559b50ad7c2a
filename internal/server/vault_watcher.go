package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"wazivo/internal/config"
	"wazivo/internal/errors"
)

// VaultClientInterface defines the Vault operations the watcher needs
type VaultClientInterface interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// KeysReloadCallback receives the API keys from a new secret version
type KeysReloadCallback func(keys []string, err error)

// VaultWatcher polls the server API key secret and hands every new version
// to the callback, so keys rotate without a restart
type VaultWatcher struct {
	mu sync.RWMutex

	client         VaultClientInterface
	secretPath     string
	pollInterval   time.Duration
	reloadCallback KeysReloadCallback
	logger         *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
}

// NewVaultWatcher creates a new VaultWatcher. The version already loaded at
// startup is passed as initialVersion so it does not trigger a reload.
func NewVaultWatcher(client VaultClientInterface, secretPath string, pollInterval time.Duration, initialVersion int64, reloadCallback KeysReloadCallback, logger *errors.Logger) *VaultWatcher {
	return &VaultWatcher{
		client:         client,
		secretPath:     secretPath,
		pollInterval:   pollInterval,
		reloadCallback: reloadCallback,
		logger:         logger,
		stopChan:       make(chan struct{}),
		lastVersion:    initialVersion,
	}
}

// Start begins polling Vault for secret changes
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}
	vw.running = true
	go vw.pollLoop()
	vw.logger.Info("Vault watcher started", "secret_path", vw.secretPath, "poll_interval", vw.pollInterval)
	return nil
}

// Stop stops the Vault watcher
func (vw *VaultWatcher) Stop() {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if !vw.running {
		return
	}
	close(vw.stopChan)
	vw.running = false
	vw.logger.Info("Vault watcher stopped")
}

// pollLoop polls Vault for secret changes
func (vw *VaultWatcher) pollLoop() {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			vw.poll()
		case <-vw.stopChan:
			return
		}
	}
}

// poll reads the secret once and reports a new version to the callback
func (vw *VaultWatcher) poll() {
	secret, changed, err := vw.checkForUpdates()
	if err != nil {
		vw.logger.LogError(err, "Failed to check Vault for updates", "secret_path", vw.secretPath)
		return
	}
	if !changed {
		return
	}

	keys, err := parseAPIKeys(secret)
	if err != nil {
		vw.logger.LogError(err, "Vault API key secret is unusable", "secret_path", vw.secretPath)
		vw.reloadCallback(nil, err)
		return
	}
	vw.logger.Info("API keys rotated from Vault", "version", secret.Version, "count", len(keys))
	vw.reloadCallback(keys, nil)
}

// checkForUpdates checks if the Vault secret version has changed
func (vw *VaultWatcher) checkForUpdates() (*config.VaultSecret, bool, error) {
	secret, err := vw.client.GetSecretV2(vw.secretPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read secret: %w", err)
	}

	vw.mu.Lock()
	defer vw.mu.Unlock()
	if secret.Version > vw.lastVersion {
		vw.lastVersion = secret.Version
		return secret, true, nil
	}
	return secret, false, nil
}

// parseAPIKeys reads the comma separated "keys" value
func parseAPIKeys(secret *config.VaultSecret) ([]string, error) {
	raw, ok := secret.Data["keys"].(string)
	if !ok {
		return nil, fmt.Errorf("secret has no string value for key 'keys'")
	}

	var keys []string
	for part := range strings.SplitSeq(raw, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("secret 'keys' value is empty")
	}
	return keys, nil
}

// Status returns the current status of the VaultWatcher for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	return map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
	}
}
