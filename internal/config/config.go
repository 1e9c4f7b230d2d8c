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

// Config captures sharemd's settings.
type Config struct {
	BaseURL      string
	LinkFile     string
	Debounce     time.Duration
	MaxURLLength int
	LogFile      string
	LogLevel     string
	GlamourStyle string
}

const (
	defaultConfigPath   = "~/.config/sharemd/config.toml"
	defaultBaseURL      = "https://sharemd.app/"
	defaultLinkFile     = "~/.local/state/sharemd/link.url"
	defaultLogFile      = "~/.local/state/sharemd/sharemd.log"
	defaultLogLevel     = "info"
	defaultGlamourStyle = "dark"
	defaultDebounce     = 500 * time.Millisecond
	defaultMaxURLLength = 8000
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:      defaultBaseURL,
		LinkFile:     MustExpand(defaultLinkFile),
		Debounce:     defaultDebounce,
		MaxURLLength: defaultMaxURLLength,
		LogFile:      MustExpand(defaultLogFile),
		LogLevel:     defaultLogLevel,
		GlamourStyle: defaultGlamourStyle,
	}
}

// Load locates and parses the sharemd config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL      string `toml:"base_url"`
		LinkFile     string `toml:"link_file"`
		DebounceMS   int    `toml:"debounce_ms"`
		MaxURLLength int    `toml:"max_url_length"`
		LogFile      string `toml:"log_file"`
		LogLevel     string `toml:"log_level"`
		GlamourStyle string `toml:"glamour_style"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Config{}, fmt.Errorf("parse config: base_url %q is not an absolute URL", v)
		}
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.LinkFile); v != "" {
		cfg.LinkFile = MustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = MustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.GlamourStyle); v != "" {
		cfg.GlamourStyle = v
	}
	if raw.DebounceMS > 0 {
		cfg.Debounce = time.Duration(raw.DebounceMS) * time.Millisecond
	}
	if raw.MaxURLLength != 0 {
		cfg.MaxURLLength = raw.MaxURLLength
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

// MustExpand is ExpandPath that returns path unchanged on failure.
func MustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
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
