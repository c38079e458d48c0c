// Package config loads the server configuration from environment variables.
// Credentials are read once at startup; their presence is checked at call
// time so that unauthenticated operations (listing tool schemas) still work.
package config

import (
	"os"
	"path/filepath"
)

// Config holds all configuration sourced from the environment.
type Config struct {
	// OAuth2 client credentials for the Chrome Web Store APIs
	ClientID     string // CWS_CLIENT_ID
	ClientSecret string // CWS_CLIENT_SECRET
	RefreshToken string // CWS_REFRESH_TOKEN

	// Default target identifiers
	PublisherID string // CWS_PUBLISHER_ID, "me" denotes the caller's own account
	ItemID      string // CWS_ITEM_ID, optional default item

	// Dashboard automation
	ProfileDir string // CWS_DASHBOARD_PROFILE_DIR, persistent browser profile

	// Logging
	LogLevel  string // LOG_LEVEL: debug, info, warn, error
	LogFormat string // LOG_FORMAT: console or json
}

// New reads configuration from the environment, applying defaults.
func New() *Config {
	return &Config{
		ClientID:     os.Getenv("CWS_CLIENT_ID"),
		ClientSecret: os.Getenv("CWS_CLIENT_SECRET"),
		RefreshToken: os.Getenv("CWS_REFRESH_TOKEN"),
		PublisherID:  EnvOrDefault("CWS_PUBLISHER_ID", "me"),
		ItemID:       os.Getenv("CWS_ITEM_ID"),
		ProfileDir:   EnvOrDefault("CWS_DASHBOARD_PROFILE_DIR", defaultProfileDir()),
		LogLevel:     EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:    EnvOrDefault("LOG_FORMAT", "console"),
	}
}

// defaultProfileDir is a fixed subdirectory of the user's home directory so
// that login cookies survive across invocations.
func defaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".cws-mcp", "chrome-profile")
	}
	return filepath.Join(home, ".cws-mcp", "chrome-profile")
}
