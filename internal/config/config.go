package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config describes how parley reaches the WAHA server.
type Config struct {
	WAHAURL              string
	APIKey               string
	DefaultSession       string
	ChatsPollInterval    time.Duration
	MessagesPollInterval time.Duration
	LogFile              string
}

const (
	defaultConfigPath = "~/.config/parley/config.toml"
	defaultLogFile    = "~/.local/state/parley/parley.log"
	defaultWAHAURL    = "http://localhost:3000"

	defaultChatsPollInterval    = 3 * time.Second
	defaultMessagesPollInterval = 2 * time.Second
)

// Environment variables that override file values.
const (
	EnvURL     = "WAHA_URL"
	EnvAPIKey  = "WAHA_API_KEY"
	EnvSession = "WAHA_SESSION"
)

type fileConfig struct {
	WAHAURL              string `toml:"waha_url"`
	APIKey               string `toml:"waha_api_key"`
	DefaultSession       string `toml:"default_session,omitempty"`
	ChatsPollInterval    string `toml:"chats_poll_interval,omitempty"`
	MessagesPollInterval string `toml:"messages_poll_interval,omitempty"`
	LogFile              string `toml:"log_file,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		WAHAURL:              defaultWAHAURL,
		ChatsPollInterval:    defaultChatsPollInterval,
		MessagesPollInterval: defaultMessagesPollInterval,
		LogFile:              mustExpand(defaultLogFile),
	}
}

// Load reads the config file, falling back to defaults when it is missing,
// then applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.WAHAURL); v != "" {
		cfg.WAHAURL = v
	}
	cfg.APIKey = strings.TrimSpace(raw.APIKey)
	cfg.DefaultSession = strings.TrimSpace(raw.DefaultSession)

	if cfg.ChatsPollInterval, err = parseInterval("chats_poll_interval", raw.ChatsPollInterval, defaultChatsPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.MessagesPollInterval, err = parseInterval("messages_poll_interval", raw.MessagesPollInterval, defaultMessagesPollInterval); err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Validate reports every problem with cfg at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.WAHAURL) == "" {
		errs = append(errs, errors.New("waha_url is required"))
	} else if u, err := url.Parse(c.WAHAURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("waha_url %q must be an absolute URL", c.WAHAURL))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("waha_url scheme %q must be http or https", u.Scheme))
	}
	if strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, errors.New("waha_api_key is required"))
	}
	if c.ChatsPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("chats_poll_interval must be positive, got %s", c.ChatsPollInterval))
	}
	if c.MessagesPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("messages_poll_interval must be positive, got %s", c.MessagesPollInterval))
	}
	return errors.Join(errs...)
}

// Save writes cfg as TOML, creating parent directories.
func Save(path string, cfg Config) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw := fileConfig{
		WAHAURL:        cfg.WAHAURL,
		APIKey:         cfg.APIKey,
		DefaultSession: cfg.DefaultSession,
		LogFile:        cfg.LogFile,
	}
	if cfg.ChatsPollInterval > 0 {
		raw.ChatsPollInterval = cfg.ChatsPollInterval.String()
	}
	if cfg.MessagesPollInterval > 0 {
		raw.MessagesPollInterval = cfg.MessagesPollInterval.String()
	}

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	// The file holds the API key.
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

// MaskedKey returns the API key with all but its last four characters hidden.
func (c Config) MaskedKey() string {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("•", len(key))
	}
	return strings.Repeat("•", len(key)-4) + key[len(key)-4:]
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvURL)); v != "" {
		cfg.WAHAURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSession)); v != "" {
		cfg.DefaultSession = v
	}
}

func parseInterval(field, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
