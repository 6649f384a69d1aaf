// Package config loads the bot's TOML configuration and the secrets it
// references from the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	API  APIConfig  `toml:"api"`
	Wiki WikiConfig `toml:"wiki"`
	FAQ  FAQConfig  `toml:"faq"`
	FFF  FFFConfig  `toml:"fff"`
	Mods ModsConfig `toml:"mods"`
	Log  LogConfig  `toml:"log"`
	HTTP HTTPConfig `toml:"http"`
}

// APIConfig locates the modding API documentation and its JSON corpora.
type APIConfig struct {
	DocsBase        string   `toml:"docs_base"`
	RuntimeURL      string   `toml:"runtime_url"`
	DataURL         string   `toml:"data_url"`
	RefreshInterval Duration `toml:"refresh_interval"`
}

// WikiConfig holds settings for the MediaWiki client.
type WikiConfig struct {
	APIURL        string   `toml:"api_url"`
	PageBase      string   `toml:"page_base"`
	PageCacheSize int      `toml:"page_cache_size"`
	PageCacheTTL  Duration `toml:"page_cache_ttl"`
	MinLeadLength int      `toml:"min_lead_length"`
	RateLimit     float64  `toml:"rate_limit"`
	RateBurst     int      `toml:"rate_burst"`
}

// FAQConfig holds settings for FAQ storage and matching.
type FAQConfig struct {
	Driver string `toml:"driver"`
	// DSNSource is "config" to use DSN as written or "env" to read the
	// variable named by DSNEnv.
	DSNSource       string   `toml:"dsn_source"`
	DSN             string   `toml:"dsn"`
	DSNEnv          string   `toml:"dsn_env"`
	ServerID        int64    `toml:"server_id"`
	Author          string   `toml:"author"`
	RefreshInterval Duration `toml:"refresh_interval"`
	Threshold       float64  `toml:"threshold"`
}

// FFFConfig locates the Friday Facts blog.
type FFFConfig struct {
	BaseURL string `toml:"base_url"`
}

// ModsConfig holds the mod portal search endpoint and its credentials.
// Each credential has a source ("env" or "config"), a value and an
// environment variable, as FAQConfig.DSN does.
type ModsConfig struct {
	SearchURL      string `toml:"search_url"`
	UsernameSource string `toml:"username_source"`
	Username       string `toml:"username"`
	UsernameEnv    string `toml:"username_env"`
	TokenSource    string `toml:"token_source"`
	Token          string `toml:"token"`
	TokenEnv       string `toml:"token_env"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// File receives logs while the console owns the terminal. Empty means
	// rhobot.log next to the config file.
	File string `toml:"file"`
}

// HTTPConfig holds settings shared by every outbound request.
type HTTPConfig struct {
	Timeout   Duration `toml:"timeout"`
	UserAgent string   `toml:"user_agent"`
}

// Duration is a time.Duration written as a string such as "5m" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			DocsBase:        "https://lua-api.factorio.com/latest/",
			RuntimeURL:      "https://lua-api.factorio.com/latest/runtime-api.json",
			DataURL:         "https://lua-api.factorio.com/latest/prototype-api.json",
			RefreshInterval: Duration{24 * time.Hour},
		},
		Wiki: WikiConfig{
			APIURL:        "https://wiki.factorio.com/api.php",
			PageBase:      "https://wiki.factorio.com/",
			PageCacheSize: 256,
			PageCacheTTL:  Duration{10 * time.Minute},
			MinLeadLength: 100,
			RateLimit:     5,
			RateBurst:     5,
		},
		FAQ: FAQConfig{
			Driver:          "sqlite",
			DSNSource:       "config",
			DSN:             "rhobot.db",
			DSNEnv:          "RHOBOT_FAQ_DSN",
			ServerID:        0,
			Author:          "console",
			RefreshInterval: Duration{5 * time.Minute},
			Threshold:       0.5,
		},
		FFF: FFFConfig{
			BaseURL: "https://www.factorio.com/blog",
		},
		Mods: ModsConfig{
			SearchURL:      "https://mods.factorio.com/api/search",
			UsernameSource: "env",
			UsernameEnv:    "MOD_PORTAL_USERNAME",
			TokenSource:    "env",
			TokenEnv:       "MOD_PORTAL_TOKEN",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		HTTP: HTTPConfig{
			Timeout:   Duration{30 * time.Second},
			UserAgent: "rhobot (+https://github.com/julianshen/rhobot)",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes c as TOML to w.
func (c *Config) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Save writes c to path, creating parent directories.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// FAQDSN resolves the data source name of the FAQ database.
func (c *Config) FAQDSN() (string, error) {
	return ResolveSecret(c.FAQ.DSNSource, c.FAQ.DSN, c.FAQ.DSNEnv)
}

// ModPortalCredentials resolves the mod portal username and token.
func (c *Config) ModPortalCredentials() (username, token string, err error) {
	username, err = ResolveSecret(c.Mods.UsernameSource, c.Mods.Username, c.Mods.UsernameEnv)
	if err != nil {
		return "", "", fmt.Errorf("mod portal username: %w", err)
	}
	token, err = ResolveSecret(c.Mods.TokenSource, c.Mods.Token, c.Mods.TokenEnv)
	if err != nil {
		return "", "", fmt.Errorf("mod portal token: %w", err)
	}
	return username, token, nil
}

// DefaultPath is the config file used when none is given:
// $XDG_CONFIG_HOME/rhobot/config.toml or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "rhobot.toml"
	}
	return filepath.Join(dir, "rhobot", "config.toml")
}
