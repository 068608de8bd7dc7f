// Package config loads the service configuration from the secrets file and
// environment, in that order, with environment values taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Gemini  GeminiConfig  `koanf:"gemini"`
	Belex   BelexConfig   `koanf:"belex"`
	Storage StorageConfig `koanf:"storage"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

// GeminiConfig holds the credentials and identifiers for the hosted file
// search service. APIKey, FilestoreID and ProjectID are required and live in
// secrets.yaml (gitignored) or in BELEX_-prefixed environment variables; they
// must never be committed to version control.
type GeminiConfig struct {
	APIKey       string `koanf:"api_key"`
	FilestoreID  string `koanf:"filestore_id"`
	ProjectID    string `koanf:"project_id"`
	Model        string `koanf:"model"`
	SystemPrompt string `koanf:"system_prompt"`
}

type BelexConfig struct {
	BaseURL  string `koanf:"base_url"`
	CacheTTL string `koanf:"cache_ttl"`
}

type StorageConfig struct {
	// Path is the SQLite database file for the query log. Empty disables
	// query logging.
	Path string `koanf:"path"`
}

// Load reads configuration from the given secrets file (if it exists) and
// then overlays BELEX_-prefixed environment variables, where a double
// underscore separates nesting levels (BELEX_GEMINI__API_KEY -> gemini.api_key).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// A missing secrets file is fine; the environment may carry
			// everything.
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("BELEX_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "BELEX_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("gemini.model") {
		k.Set("gemini.model", "gemini-2.5-flash")
	}
	if !k.Exists("belex.base_url") {
		k.Set("belex.base_url", "https://www.belex.sites.be.ch/api/de")
	}
	if !k.Exists("belex.cache_ttl") {
		k.Set("belex.cache_ttl", "1h")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every required secret is present and non-empty. The
// service refuses to start when one is missing, so the error names the
// offending key for the operator.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"gemini.api_key", c.Gemini.APIKey},
		{"gemini.filestore_id", c.Gemini.FilestoreID},
		{"gemini.project_id", c.Gemini.ProjectID},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			envName := "BELEX_" + strings.ToUpper(strings.Replace(r.key, ".", "__", -1))
			return fmt.Errorf("missing required secret %q: copy secrets.example.yaml to secrets.yaml and fill it in, or set %s", r.key, envName)
		}
	}

	return nil
}

// LawCacheTTL parses belex.cache_ttl, falling back to one hour on a bad or
// empty value.
func (c *Config) LawCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Belex.CacheTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}
