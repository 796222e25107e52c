// Package config handles configuration loading and persistence for folio.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. FOLIO_BASE_URL
const EnvPrefix = "FOLIO"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" mapstructure:"style"`                           // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji" mapstructure:"enable_emoji"`             // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines" mapstructure:"preserve_newlines"`   // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap" mapstructure:"table_wrap"`                 // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links" mapstructure:"inline_table_links"` // Render links inline in tables
}

// RelayConfig configures the `folio serve` relay
type RelayConfig struct {
	Listen         string   `json:"listen" mapstructure:"listen"`
	Upstream       string   `json:"upstream" mapstructure:"upstream"` // Backend base URL
	RatePerSecond  float64  `json:"rate_per_second" mapstructure:"rate_per_second"`
	Burst          int      `json:"burst" mapstructure:"burst"`
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins"`
	// ForwardAuth passes the caller's Authorization header to the upstream.
	ForwardAuth bool `json:"forward_auth" mapstructure:"forward_auth"`
}

// Config represents the user configuration
type Config struct {
	BaseURL  string `json:"base_url" mapstructure:"base_url"`
	ChatPath string `json:"chat_path" mapstructure:"chat_path"`
	// TimeoutSeconds bounds every chat turn.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	// StalePolicy is "discard" or "apply" and controls replies that arrive
	// after the conversation was cleared.
	StalePolicy     string         `json:"stale_policy" mapstructure:"stale_policy"`
	LogLevel        string         `json:"log_level" mapstructure:"log_level"`
	LogFile         string         `json:"log_file,omitempty" mapstructure:"log_file"`
	CopyToClipboard bool           `json:"copy_to_clipboard" mapstructure:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty" mapstructure:"tui_theme"`
	PromptsFile     string         `json:"prompts_file,omitempty" mapstructure:"prompts_file"`
	ExportDir       string         `json:"export_dir,omitempty" mapstructure:"export_dir"`
	Markdown        MarkdownConfig `json:"markdown" mapstructure:"markdown"`
	Relay           RelayConfig    `json:"relay" mapstructure:"relay"`
}

// Timeout returns TimeoutSeconds as a duration, falling back to 30s
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultRelayConfig returns the default relay configuration
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		Listen:         "127.0.0.1:8787",
		Upstream:       "http://localhost:8000",
		RatePerSecond:  1,
		Burst:          5,
		AllowedOrigins: []string{"http://localhost:3000"},
		ForwardAuth:    true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://localhost:3000",
		ChatPath:        "/api/chat",
		TimeoutSeconds:  30,
		StalePolicy:     "discard",
		LogLevel:        "warn",
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
		Relay:           DefaultRelayConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".folio"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetExportDir returns the transcript directory, creating it if necessary
func GetExportDir(cfg Config) (string, error) {
	dir := cfg.ExportDir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "transcripts")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	return dir, nil
}

// GetCacheDir returns the directory holding cached content responses
func GetCacheDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cache"), nil
}

// newViper returns a viper instance primed with defaults and, when env is
// true, FOLIO_* environment overrides
func newViper(env bool) *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("chat_path", def.ChatPath)
	v.SetDefault("timeout_seconds", def.TimeoutSeconds)
	v.SetDefault("stale_policy", def.StalePolicy)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("copy_to_clipboard", def.CopyToClipboard)
	v.SetDefault("tui_theme", def.TUITheme)
	v.SetDefault("prompts_file", def.PromptsFile)
	v.SetDefault("export_dir", def.ExportDir)

	v.SetDefault("markdown.style", def.Markdown.Style)
	v.SetDefault("markdown.enable_emoji", def.Markdown.EnableEmoji)
	v.SetDefault("markdown.preserve_newlines", def.Markdown.PreserveNewLines)
	v.SetDefault("markdown.table_wrap", def.Markdown.TableWrap)
	v.SetDefault("markdown.inline_table_links", def.Markdown.InlineTableLinks)

	v.SetDefault("relay.listen", def.Relay.Listen)
	v.SetDefault("relay.upstream", def.Relay.Upstream)
	v.SetDefault("relay.rate_per_second", def.Relay.RatePerSecond)
	v.SetDefault("relay.burst", def.Relay.Burst)
	v.SetDefault("relay.allowed_origins", def.Relay.AllowedOrigins)
	v.SetDefault("relay.forward_auth", def.Relay.ForwardAuth)

	if env {
		// relay.listen becomes FOLIO_RELAY_LISTEN
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	return v
}

// LoadConfig loads the configuration from disk, applying FOLIO_* overrides
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration from path. A missing file is not an
// error: defaults and environment overrides are used.
func LoadConfigFrom(path string) (Config, error) {
	v := newViper(true)
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigTo(filepath.Join(configDir, "config.json"), cfg)
}

// SaveConfigTo writes cfg as indented JSON to path
func SaveConfigTo(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Keys returns the dotted names accepted by `folio config set`
func Keys() []string {
	keys := newViper(false).AllKeys()
	sort.Strings(keys)
	return keys
}

// Set updates the dotted key on cfg from a string value, the way `folio config
// set` does. The value is parsed according to the field type.
func Set(cfg Config, key, value string) (Config, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	v := newViper(false)
	if !slices.Contains(v.AllKeys(), key) {
		return cfg, fmt.Errorf("unknown config key: %s", key)
	}

	// Round-trip through viper so nested keys and type coercion come for free.
	data, err := json.Marshal(cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to marshal config: %w", err)
	}
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	switch v.Get(key).(type) {
	case []string, []interface{}:
		v.Set(key, splitList(value))
	default:
		v.Set(key, value)
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return cfg, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return out, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
