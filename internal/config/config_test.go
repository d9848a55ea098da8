package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.StorageEnabled())

	rate, err := cfg.VAT()
	require.NoError(t, err)
	assert.Equal(t, "0.15", rate.String())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "storefront.yaml", `
api_url: https://yaml.example/api
db: from-yaml.sqlite3
vat_rate: "14%"
timeout: 10s
storage:
  url: https://proj.supabase.co
  key: yaml-key
`)
	envFile := writeFile(t, dir, ".env", `
STOREFRONT_DB=from-dotenv.sqlite3
STOREFRONT_ADDR=:9000
STOREFRONT_STORAGE_KEY=dotenv-key
`)
	t.Setenv(EnvAddr, ":9100")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(Options{File: cfgFile, EnvFile: envFile})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://yaml.example/api", cfg.APIURL)
	assert.Equal(t, "from-dotenv.sqlite3", cfg.DB)
	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "14%", cfg.VATRate)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "dotenv-key", cfg.Storage.Key)
	assert.Equal(t, "product-images", cfg.Storage.Bucket)
	assert.True(t, cfg.StorageEnabled())
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(Options{File: filepath.Join(dir, "nope.yaml")})
	assert.Error(t, err, "an explicit config file must exist")

	_, err = Load(Options{EnvFile: filepath.Join(dir, "nope.env")})
	assert.Error(t, err, "an explicit env file must exist")
}

func TestLoadBadValues(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")
	_, err := Load(Options{File: writeFile(t, t.TempDir(), "c.yaml", "db: x")})
	assert.Error(t, err)

	bad := writeFile(t, t.TempDir(), "c.yaml", "api_url: [not, a, string]")
	_, err = Load(Options{File: bad})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"relative api url", func(c *Config) { c.APIURL = "/api" }},
		{"bad storage url", func(c *Config) { c.Storage.URL = "supabase" }},
		{"empty db", func(c *Config) { c.DB = "" }},
		{"bad vat", func(c *Config) { c.VATRate = "lots" }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.edit(&cfg)
		assert.Error(t, cfg.Validate(), tt.name)
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLevel(" Error ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)
}
