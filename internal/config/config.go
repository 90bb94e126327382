package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"dirigent/internal/logging"
)

// Config holds all user-configurable settings loaded from config.toml
type Config struct {
	Commands CommandsConfig `toml:"commands"`
	History  HistoryConfig  `toml:"history"`
	Refresh  RefreshConfig  `toml:"refresh"`
	Watcher  WatcherConfig  `toml:"watcher"`
	Store    StoreConfig    `toml:"store"`
	Logging  LoggingConfig  `toml:"logging"`
}

// CommandsConfig holds undo/redo engine settings
type CommandsConfig struct {
	MaxStackSize int `toml:"maxStackSize"` // Oldest entries evicted beyond this
}

// HistoryConfig holds navigation history settings
type HistoryConfig struct {
	InitialPath string `toml:"initialPath"` // Starting directory for new tabs; empty means home
}

// RefreshConfig holds debounce tuning for the refresh coordinator
type RefreshConfig struct {
	LowWindowMs    int `toml:"lowWindowMs"`    // Debounce window for low-priority requests
	NormalWindowMs int `toml:"normalWindowMs"` // Debounce window for normal-priority requests
}

// WatcherConfig holds filesystem watcher settings
type WatcherConfig struct {
	Buffer int `toml:"buffer"` // Pending-notification buffer size
}

// StoreConfig holds persistence settings
type StoreConfig struct {
	Path string `toml:"path"` // SQLite database path; empty uses the default location
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level string `toml:"level"` // "debug" | "info" | "warn" | "error"
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

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Commands: CommandsConfig{
			MaxStackSize: 50,
		},
		History: HistoryConfig{
			InitialPath: home,
		},
		Refresh: RefreshConfig{
			LowWindowMs:    200,
			NormalWindowMs: 100,
		},
		Watcher: WatcherConfig{
			Buffer: 32,
		},
		Store: StoreConfig{
			Path: "", // resolved by the store package when empty
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigPath returns the config file path: ~/.config/dirigent/config.toml
// This is consistent across all platforms (Windows, macOS, Linux)
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dirigent", "config.toml")
}

// Load reads the configuration from the config file
// If the file doesn't exist, creates it with defaults
// If parsing fails, stores the error and returns defaults
func (m *Manager) Load() error {
	return m.LoadFrom(ConfigPath())
}

// LoadFrom reads the configuration from an explicit path
func (m *Manager) LoadFrom(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.path = path
	m.parseErr = nil

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		logging.Error("config: failed to create directory", "dir", configDir, "err", err)
		return err
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		logging.Info("config: creating default config", "path", m.path)
		m.config = DefaultConfig()
		if saveErr := m.saveUnlocked(); saveErr != nil {
			logging.Error("config: failed to save default config", "err", saveErr)
			return saveErr
		}
		return nil
	}
	if err != nil {
		logging.Error("config: failed to read", "path", m.path, "err", err)
		return err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		// Keep the error for callers to surface, run on defaults.
		logging.Warn("config: parse error, using defaults", "err", err)
		m.parseErr = err
		m.config = DefaultConfig()
		return nil
	}

	logging.Debug("config: loaded", "path", m.path)
	m.config = &cfg
	return nil
}

// saveUnlocked saves config without acquiring lock (caller must hold lock)
func (m *Manager) saveUnlocked() error {
	data, err := toml.Marshal(m.config)
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveUnlocked()
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

// SetMaxStackSize updates the undo stack cap
func (m *Manager) SetMaxStackSize(n int) {
	m.mu.Lock()
	m.config.Commands.MaxStackSize = n
	m.mu.Unlock()
	m.Save()
}

// SetLogLevel updates the log level setting
func (m *Manager) SetLogLevel(level string) {
	m.mu.Lock()
	m.config.Logging.Level = level
	m.mu.Unlock()
	m.Save()
}

// LowWindow returns the low-priority debounce window as a duration
func (c RefreshConfig) LowWindow() time.Duration {
	return time.Duration(c.LowWindowMs) * time.Millisecond
}

// NormalWindow returns the normal-priority debounce window as a duration
func (c RefreshConfig) NormalWindow() time.Duration {
	return time.Duration(c.NormalWindowMs) * time.Millisecond
}

// GenerateConfig backs up existing config and creates a fresh default config
// Returns the backup path if a backup was created, or empty string if no existing config
func GenerateConfig() (backupPath string, err error) {
	configPath := ConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		backupPath = filepath.Join(filepath.Dir(configPath), "config.backup."+timestamp+".toml")

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

	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return backupPath, fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return backupPath, fmt.Errorf("failed to write config: %w", err)
	}

	return backupPath, nil
}
