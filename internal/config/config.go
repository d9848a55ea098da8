// Package config loads storefront settings. Later sources override earlier
// ones: built-in defaults, the YAML config file, the .env file, then the
// process environment. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/storefront/internal/quote"
)

// Default file names, looked up in the working directory.
const (
	DefaultFile    = "storefront.yaml"
	DefaultEnvFile = ".env"
)

// Environment variable names.
const (
	EnvAPIURL        = "STOREFRONT_API_URL"
	EnvStorageURL    = "STOREFRONT_STORAGE_URL"
	EnvStorageKey    = "STOREFRONT_STORAGE_KEY"
	EnvStorageBucket = "STOREFRONT_STORAGE_BUCKET"
	EnvDB            = "STOREFRONT_DB"
	EnvAddr          = "STOREFRONT_ADDR"
	EnvVATRate       = "STOREFRONT_VAT_RATE"
	EnvLogLevel      = "STOREFRONT_LOG_LEVEL"
	EnvLog           = "STOREFRONT_LOG"
	EnvTimeout       = "STOREFRONT_TIMEOUT"
)

// Config is the storefront configuration.
type Config struct {
	// APIURL is the root of the remote storefront API.
	APIURL string `yaml:"api_url"`

	// Storage configures the image bucket.
	Storage StorageConfig `yaml:"storage"`

	// DB is the local SQLite file holding the cart and admin session.
	DB string `yaml:"db"`

	// Addr is the listen address of the local web UI.
	Addr string `yaml:"addr"`

	// VATRate applies when a quote does not carry its own rate.
	// Accepts "15%", "15" or "0.15".
	VATRate string `yaml:"vat_rate"`

	LogLevel string        `yaml:"log_level"`
	LogFile  string        `yaml:"log_file"`
	Timeout  time.Duration `yaml:"timeout"`
}

// StorageConfig configures the hosted object storage.
type StorageConfig struct {
	URL    string `yaml:"url"`
	Key    string `yaml:"key"`
	Bucket string `yaml:"bucket"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:   "http://localhost:3000/api",
		Storage:  StorageConfig{Bucket: "product-images"},
		DB:       "storefront.sqlite3",
		Addr:     "127.0.0.1:8080",
		VATRate:  "15%",
		LogLevel: "info",
		Timeout:  30 * time.Second,
	}
}

// Options selects the files Load reads. A file named explicitly must exist;
// the default files are skipped when missing.
type Options struct {
	File    string
	EnvFile string
}

// Load builds the configuration from defaults, files and the environment.
func Load(opts Options) (Config, error) {
	cfg := Default()

	file, required := opts.File, true
	if file == "" {
		file, required = DefaultFile, false
	}
	if err := cfg.loadYAML(file, required); err != nil {
		return Config{}, err
	}

	envFile, required := opts.EnvFile, true
	if envFile == "" {
		envFile, required = DefaultEnvFile, false
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
		dotenv = nil
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	slog.Debug("loaded config file", "path", path)
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvAPIURL, &c.APIURL},
		{EnvStorageURL, &c.Storage.URL},
		{EnvStorageKey, &c.Storage.Key},
		{EnvStorageBucket, &c.Storage.Bucket},
		{EnvDB, &c.DB},
		{EnvAddr, &c.Addr},
		{EnvVATRate, &c.VATRate},
		{EnvLogLevel, &c.LogLevel},
		{EnvLog, &c.LogFile},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api url %q is not an absolute URL", c.APIURL)
	}
	if c.Storage.URL != "" {
		if u, err := url.Parse(c.Storage.URL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("storage url %q is not an absolute URL", c.Storage.URL)
		}
	}
	if c.DB == "" {
		return fmt.Errorf("database path is empty")
	}
	if _, err := c.VAT(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// VAT returns the configured fallback VAT rate as a fraction.
func (c Config) VAT() (decimal.Decimal, error) {
	return quote.ParseRate(c.VATRate)
}

// StorageEnabled reports whether image storage is configured.
func (c Config) StorageEnabled() bool {
	return c.Storage.URL != "" && c.Storage.Key != ""
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
