package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Yatube configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Posts    PostsConfig    `yaml:"posts"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	// BaseURL is used for absolute links in outgoing e-mail.
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig configures the Badger store.
type DatabaseConfig struct {
	Path      string `yaml:"path"`
	BackupDir string `yaml:"backup_dir"`
}

// PostsConfig configures post listings.
type PostsConfig struct {
	PerPage int `yaml:"per_page"`
}

// AuthConfig configures sessions and password reset.
type AuthConfig struct {
	SessionCookie string `yaml:"session_cookie"`
	SessionTTL    string `yaml:"session_ttl"`
	ResetTokenTTL string `yaml:"reset_token_ttl"`
	SecureCookie  bool   `yaml:"secure_cookie"`
}

// EmailConfig configures the file-based mailer.
type EmailConfig struct {
	FilePath string `yaml:"file_path"`
	From     string `yaml:"from"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
			BaseURL:         "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Path:      "data/badger",
			BackupDir: "data/backups",
		},
		Posts: PostsConfig{
			PerPage: 10,
		},
		Auth: AuthConfig{
			SessionCookie: "sessionid",
			SessionTTL:    "336h",
			ResetTokenTTL: "72h",
		},
		Email: EmailConfig{
			FilePath: "sent_emails",
			From:     "noreply@yatube.local",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if cfg.Posts.PerPage < 1 {
		cfg.Posts.PerPage = 10
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("YATUBE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if url := os.Getenv("YATUBE_BASE_URL"); url != "" {
		c.Server.BaseURL = url
	}
	if path := os.Getenv("YATUBE_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if path := os.Getenv("YATUBE_EMAIL_PATH"); path != "" {
		c.Email.FilePath = path
	}
	if level := os.Getenv("YATUBE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetSessionTTL returns the session lifetime as a duration.
func (c *Config) GetSessionTTL() time.Duration {
	return parseDuration(c.Auth.SessionTTL, 14*24*time.Hour)
}

// GetResetTokenTTL returns the password reset link lifetime as a duration.
func (c *Config) GetResetTokenTTL() time.Duration {
	return parseDuration(c.Auth.ResetTokenTTL, 72*time.Hour)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
