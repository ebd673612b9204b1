// Package config loads and saves arbor's user configuration from a JSON
// file, falling back to defaults when the file is missing or corrupt.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/justyntemme/arbor/internal/explorer"
)

// Config holds all user-configurable settings loaded from config.json
type Config struct {
	Explorer ExplorerConfig `json:"explorer"`
	Watcher  WatcherConfig  `json:"watcher"`
	Store    StoreConfig    `json:"store"`
}

// ExplorerConfig holds explorer behavior settings
type ExplorerConfig struct {
	DebounceMs      int  `json:"debounceMs"`      // Settle delay for external change bursts
	FocusDebounceMs int  `json:"focusDebounceMs"` // Settle delay for window-focus rechecks
	ShowHidden      bool `json:"showHidden"`      // Render dotfiles
	ConfirmDelete   bool `json:"confirmDelete"`
	RestoreSession  bool `json:"restoreSession"` // Restore expansion/selection per root
}

// WatcherConfig holds filesystem watcher settings
type WatcherConfig struct {
	Enabled bool `json:"enabled"`
}

// StoreConfig holds persistence settings
type StoreConfig struct {
	Path string `json:"path"` // Database path, "" = default location
}

// Manager handles loading, saving, and accessing configuration
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error // Stores parsing error if config failed to load
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: DefaultConfig(),
	}
}

// DefaultConfig returns the default configuration. The debounce defaults
// come from the explorer's own constants so the two never drift apart.
func DefaultConfig() *Config {
	return &Config{
		Explorer: ExplorerConfig{
			DebounceMs:      int(explorer.DefaultDebounce / time.Millisecond),
			FocusDebounceMs: int(explorer.FocusDebounce / time.Millisecond),
			ShowHidden:      false,
			ConfirmDelete:   true,
			RestoreSession:  true,
		},
		Watcher: WatcherConfig{
			Enabled: true,
		},
		Store: StoreConfig{
			Path: "",
		},
	}
}

// ConfigPath returns the config file path: ~/.config/arbor/config.json
// This is consistent across all platforms (Windows, macOS, Linux)
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "arbor", "config.json")
}

// DefaultDBPath returns the default session database location.
func DefaultDBPath() string {
	configDir, _ := os.UserConfigDir()
	return filepath.Join(configDir, "arbor", "arbor.db")
}

// Load reads the configuration from the config file.
// If the file doesn't exist, creates it with defaults; if parsing fails,
// stores the error and returns defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.path = ConfigPath()
	m.parseErr = nil

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		log.Printf("Config: failed to create directory %s: %v", configDir, err)
		return err
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		m.config = DefaultConfig()
		if saveErr := m.save(); saveErr != nil {
			log.Printf("Config: failed to save default config: %v", saveErr)
			return saveErr
		}
		return nil
	}
	if err != nil {
		log.Printf("Config: failed to read %s: %v", m.path, err)
		return err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		// Store error for display, use defaults
		log.Printf("Config: JSON parse error: %v", err)
		m.parseErr = err
		m.config = DefaultConfig()
		return nil // Not an error - we're running on defaults
	}

	m.config = &cfg
	return nil
}

// save writes the config to disk (caller must hold the lock)
func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// Debounce returns the configured settle delay for change bursts.
func (m *Manager) Debounce() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.Explorer.DebounceMs) * time.Millisecond
}

// FocusDebounce returns the configured settle delay for focus rechecks.
func (m *Manager) FocusDebounce() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.Explorer.FocusDebounceMs) * time.Millisecond
}

// GenerateConfig backs up existing config and creates a fresh default
// config. Returns the backup path if a backup was created, or "" if no
// existing config.
func GenerateConfig() (backupPath string, err error) {
	configPath := ConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		backupPath = filepath.Join(filepath.Dir(configPath), "config.backup."+timestamp+".json")

		data, err := os.ReadFile(configPath)
		if err != nil {
			return "", fmt.Errorf("failed to read existing config: %w", err)
		}
		if err := os.WriteFile(backupPath, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write backup: %w", err)
		}
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return backupPath, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(DefaultConfig(), "", "  ")
	if err != nil {
		return backupPath, fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return backupPath, fmt.Errorf("failed to write config: %w", err)
	}

	return backupPath, nil
}
