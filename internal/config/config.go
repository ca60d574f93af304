package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the production backend used when nothing else is configured.
const DefaultAPIURL = "https://petstore-backend-jrt5.onrender.com"

// Config holds user preferences and client settings
type Config struct {
	APIURL        string `yaml:"api_url" json:"api_url"`               // Remote inventory API base URL
	ConfirmDelete bool   `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete

	// Session settings
	SessionMinutes int `yaml:"session_minutes" json:"session_minutes"` // Session lifetime, slides on each guarded check
	GuardMinutes   int `yaml:"guard_minutes" json:"guard_minutes"`     // Interval between session guard checks

	// Notification settings
	NotifySeconds  int `yaml:"notify_seconds" json:"notify_seconds"`   // Low-stock poll interval
	MessageSeconds int `yaml:"message_seconds" json:"message_seconds"` // How long transient messages stay visible

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logPath := ""
	if home != "" {
		logPath = filepath.Join(home, ".pawstock", "logs", "pawstock.log")
	}

	return &Config{
		APIURL:         getEnv("PAWSTOCK_API_URL", DefaultAPIURL),
		ConfirmDelete:  true,
		SessionMinutes: 15,
		GuardMinutes:   5,
		NotifySeconds:  30,
		MessageSeconds: 4,
		LogLevel:       getEnv("PAWSTOCK_LOG_LEVEL", "INFO"),
		LogFile:        getEnv("PAWSTOCK_LOG_FILE", logPath),
		LogConsole:     getEnv("PAWSTOCK_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Dir returns the pawstock state directory (~/.pawstock)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".pawstock"), nil
}

// Load loads config from ~/.pawstock/config.yaml
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, "config.yaml")

	// Check if exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Return defaults if no config
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves config to ~/.pawstock/config.yaml
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SessionDuration returns the configured session lifetime.
func (c *Config) SessionDuration() time.Duration {
	if c.SessionMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.SessionMinutes) * time.Minute
}

// GuardInterval returns the interval between session guard checks.
func (c *Config) GuardInterval() time.Duration {
	if c.GuardMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.GuardMinutes) * time.Minute
}

// NotifyInterval returns the low-stock poll interval.
func (c *Config) NotifyInterval() time.Duration {
	if c.NotifySeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NotifySeconds) * time.Second
}

// MessageTTL returns how long transient UI messages stay visible.
func (c *Config) MessageTTL() time.Duration {
	if c.MessageSeconds <= 0 {
		return 4 * time.Second
	}
	return time.Duration(c.MessageSeconds) * time.Second
}
