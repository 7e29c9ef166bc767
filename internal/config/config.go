// ABOUTME: Configuration loading and parsing for cosmo-server
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when the config file leaves them unset
const (
	DefaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	DefaultChatModel      = "gemini-2.5-flash"
	DefaultImageModel     = "gemini-2.5-flash-image-preview"
	DefaultTemperature    = 0.9
	DefaultTopP           = 0.95
	DefaultRequestTimeout = 90 * time.Second
	DefaultHistoryWindow  = 6
)

// Config represents the complete cosmo-server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database"`
	AI        AIConfig        `yaml:"ai"`
	License   LicenseConfig   `yaml:"license"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	CertFile  string `yaml:"cert_file"` // TLS cert file (generate via: tailscale cert <hostname>)
	KeyFile   string `yaml:"key_file"`  // TLS key file
	Funnel    bool   `yaml:"funnel"`    // Enable public Funnel (implies HTTPS)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AIConfig holds generative-AI provider configuration.
// APIKey may be empty; the server then runs with AI disabled and the
// health endpoint reports ai_configured=false.
type AIConfig struct {
	APIKey        string  `yaml:"api_key"`
	BaseURL       string  `yaml:"base_url"`
	ChatModel     string  `yaml:"chat_model"`
	ImageModel    string  `yaml:"image_model"`
	Temperature   float64 `yaml:"temperature"`
	TopP          float64 `yaml:"top_p"`
	HistoryWindow int     `yaml:"history_window"`

	RequestTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	RequestTimeoutRaw string `yaml:"request_timeout"`
}

// LicenseConfig holds the license-key allow-set configuration.
// Keys lists tokens inline; KeysFile points to a TOML file whose keys
// are merged with the inline list. An empty merged set disables the gate.
type LicenseConfig struct {
	Keys     []string `yaml:"keys"`
	KeysFile string   `yaml:"keys_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in provider defaults for fields left unset.
func (c *Config) applyDefaults() {
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = DefaultBaseURL
	}
	if c.AI.ChatModel == "" {
		c.AI.ChatModel = DefaultChatModel
	}
	if c.AI.ImageModel == "" {
		c.AI.ImageModel = DefaultImageModel
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = DefaultTemperature
	}
	if c.AI.TopP == 0 {
		c.AI.TopP = DefaultTopP
	}
	if c.AI.RequestTimeout == 0 {
		c.AI.RequestTimeout = DefaultRequestTimeout
	}
	if c.AI.HistoryWindow == 0 {
		c.AI.HistoryWindow = DefaultHistoryWindow
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// The HTTP address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.AI.HistoryWindow < 0 {
		return fmt.Errorf("ai.history_window must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.AI.RequestTimeoutRaw != "" {
		cfg.AI.RequestTimeout, err = time.ParseDuration(cfg.AI.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.AI.RequestTimeoutRaw, err)
		}
	}

	return nil
}
