// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// PersistMode selects which part of the application state is stored durably.
type PersistMode string

const (
	// PersistFull stores the user, all sessions and the active session id.
	PersistFull PersistMode = "full"
	// PersistUser stores only the user; sessions are re-fetched from the backend.
	PersistUser PersistMode = "user"
)

// ThreadSyncMode selects how server threads are folded into local sessions.
type ThreadSyncMode string

const (
	// ThreadSyncMerge keeps local sessions and prepends unknown threads.
	ThreadSyncMerge ThreadSyncMode = "merge"
	// ThreadSyncReplace treats the backend thread list as the sole source of truth.
	ThreadSyncReplace ThreadSyncMode = "replace"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	APIBaseURL  string
	DBPath      string
	Session     SessionConfig
	HTTP        HTTPConfig
}

// SessionConfig controls session store behaviour.
type SessionConfig struct {
	PersistMode    PersistMode
	ThreadSync     ThreadSyncMode
	ReconcileDelay time.Duration
	PromoteLocal   bool   // first message of a local session creates a server thread
	DefaultAgentID string // agent assigned to sessions built from server threads
}

// HTTPConfig controls the backend HTTP client.
type HTTPConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second; <= 0 disables pacing
	Burst     int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		APIBaseURL:  strings.TrimRight(getEnv("GROWWISE_API_URL", "http://127.0.0.1:8000"), "/"),
		DBPath:      getEnv("GROWWISE_DB_PATH", "./data/growwise.db"),
		Session: SessionConfig{
			PersistMode:    PersistMode(strings.ToLower(getEnv("GROWWISE_PERSIST_MODE", string(PersistUser)))),
			ThreadSync:     ThreadSyncMode(strings.ToLower(getEnv("GROWWISE_THREAD_SYNC", string(ThreadSyncReplace)))),
			ReconcileDelay: getEnvDuration("GROWWISE_RECONCILE_DELAY", 500*time.Millisecond),
			PromoteLocal:   getEnvBool("GROWWISE_PROMOTE_LOCAL", true),
			DefaultAgentID: getEnv("GROWWISE_DEFAULT_AGENT", "agent-code"),
		},
		HTTP: HTTPConfig{
			Timeout:   getEnvDuration("GROWWISE_HTTP_TIMEOUT", 30*time.Second),
			RateLimit: getEnvFloat("GROWWISE_RATE_LIMIT", 10),
			Burst:     getEnvInt("GROWWISE_RATE_BURST", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("GROWWISE_DB_PATH cannot be empty")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("GROWWISE_API_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	switch c.Session.PersistMode {
	case PersistFull, PersistUser:
	default:
		return fmt.Errorf("GROWWISE_PERSIST_MODE must be %q or %q", PersistFull, PersistUser)
	}
	switch c.Session.ThreadSync {
	case ThreadSyncMerge, ThreadSyncReplace:
	default:
		return fmt.Errorf("GROWWISE_THREAD_SYNC must be %q or %q", ThreadSyncMerge, ThreadSyncReplace)
	}
	if c.Session.ReconcileDelay < 0 {
		return fmt.Errorf("GROWWISE_RECONCILE_DELAY must be >= 0")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("GROWWISE_HTTP_TIMEOUT must be > 0")
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.Burst <= 0 {
		return fmt.Errorf("GROWWISE_RATE_BURST must be > 0 when rate limiting is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins returns the CORS origins for the view API.
func (c *Config) AllowedOrigins() []string {
	if c.IsDevelopment() {
		return []string{"*"}
	}
	return []string{c.FrontendURL}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// getEnvDuration accepts Go durations ("750ms") or a bare integer in milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
