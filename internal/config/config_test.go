package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "https://lua-api.factorio.com/latest/", cfg.API.DocsBase)
	assert.Equal(t, 24*time.Hour, cfg.API.RefreshInterval.Duration)
	assert.Equal(t, 100, cfg.Wiki.MinLeadLength)
	assert.Equal(t, "sqlite", cfg.FAQ.Driver)
	assert.Equal(t, 5*time.Minute, cfg.FAQ.RefreshInterval.Duration)
	assert.InDelta(t, 0.5, cfg.FAQ.Threshold, 1e-9)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	tomlContent := `
[api]
refresh_interval = "12h"

[wiki]
min_lead_length = 40
rate_limit = 1.5

[faq]
driver = "postgres"
dsn = "postgres://bot@localhost/faq"
server_id = 42

[log]
level = "debug"
format = "json"
`
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(tomlContent), 0644))

	cfg, err := Load(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, cfg.API.RefreshInterval.Duration)
	assert.Equal(t, 40, cfg.Wiki.MinLeadLength)
	assert.InDelta(t, 1.5, cfg.Wiki.RateLimit, 1e-9)
	assert.Equal(t, "postgres", cfg.FAQ.Driver)
	assert.Equal(t, int64(42), cfg.FAQ.ServerID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// untouched sections keep their defaults
	assert.Equal(t, "https://www.factorio.com/blog", cfg.FFF.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout.Duration)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadInvalidTOML(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("[api\nbroken"), 0644))

	_, err := Load(tmpFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoadInvalidDuration(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("[faq]\nrefresh_interval = \"soon\"\n"), 0644))

	_, err := Load(tmpFile)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FAQ.ServerID = 9
	cfg.Wiki.PageCacheTTL = Duration{90 * time.Second}

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, cfg.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `page_cache_ttl = "1m30s"`)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestFAQDSN(t *testing.T) {
	cfg := DefaultConfig()
	dsn, err := cfg.FAQDSN()
	require.NoError(t, err)
	assert.Equal(t, "rhobot.db", dsn)

	t.Setenv("RHOBOT_FAQ_DSN", "file:faq.db")
	cfg.FAQ.DSNSource = "env"
	dsn, err = cfg.FAQDSN()
	require.NoError(t, err)
	assert.Equal(t, "file:faq.db", dsn)
}

func TestModPortalCredentials(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("MOD_PORTAL_USERNAME", "")
	t.Setenv("MOD_PORTAL_TOKEN", "")
	_, _, err := cfg.ModPortalCredentials()
	assert.ErrorContains(t, err, "mod portal username")

	t.Setenv("MOD_PORTAL_USERNAME", "rho")
	_, _, err = cfg.ModPortalCredentials()
	assert.ErrorContains(t, err, "mod portal token")

	t.Setenv("MOD_PORTAL_TOKEN", "secret")
	user, token, err := cfg.ModPortalCredentials()
	require.NoError(t, err)
	assert.Equal(t, "rho", user)
	assert.Equal(t, "secret", token)

	cfg.Mods.TokenSource = "config"
	cfg.Mods.Token = "inline"
	_, token, err = cfg.ModPortalCredentials()
	require.NoError(t, err)
	assert.Equal(t, "inline", token)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")
	p := DefaultPath()
	assert.Equal(t, "config.toml", filepath.Base(p))
	assert.Equal(t, "rhobot", filepath.Base(filepath.Dir(p)))
}
