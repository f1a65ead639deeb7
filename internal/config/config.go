// Package config resolves process configuration from profile defaults, an
// optional YAML file and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/toolhub/proxycurl-mcp/internal/core"
	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
)

// Environment keys.
const (
	EnvAPIKey        = "PROXYCURL_API_KEY"
	EnvBaseURL       = "PROXYCURL_BASE_URL"
	EnvHTTPTimeout   = "PROXYCURL_HTTP_TIMEOUT"
	EnvProfile       = "PROXYCURL_MCP_PROFILE"
	EnvConfigFile    = "PROXYCURL_MCP_CONFIG"
	EnvMCPTransport  = "MCP_TRANSPORT"
	EnvMCPListen     = "MCP_LISTEN"
	EnvHTTPListen    = "HTTP_LISTEN"
	EnvHTTPJWTSecret = "HTTP_JWT_SECRET"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvAllowlist     = "ENRICHMENT_ALLOWLIST"
)

// Transports accepted for MCP_TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportTCP   = "tcp"
)

// ErrMissingAPIKey is returned by Validate when no API key is configured.
var ErrMissingAPIKey = errors.New(EnvAPIKey + " environment variable is required")

type Config struct {
	Profile       string        `yaml:"profile"`
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	MCPTransport  string        `yaml:"mcp_transport"`
	MCPListen     string        `yaml:"mcp_listen"`
	HTTPListen    string        `yaml:"http_listen"`
	HTTPJWTSecret string        `yaml:"http_jwt_secret"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
	DatabaseURL   string        `yaml:"database_url"`
	// Comma-separated flag names callers may set to include. Empty allows all.
	EnrichmentAllowlist string `yaml:"enrichment_allowlist"`
}

// Load reads .env (best effort), the optional YAML file named by
// PROXYCURL_MCP_CONFIG and the process environment. It does not require the
// API key; call Validate before serving.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	env := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	var file Config
	if path := env(EnvConfigFile); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	profileName := firstNonEmpty(env(EnvProfile), file.Profile)
	profile, err := core.LoadProfile(profileName)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Profile:      profile.Name,
		BaseURL:      proxycurl.DefaultBaseURL,
		HTTPTimeout:  profile.HTTPTimeout,
		MCPTransport: profile.MCPTransport,
		MCPListen:    profile.MCPListen,
		HTTPListen:   profile.HTTPListen,
		LogLevel:     profile.LogLevel,
		LogFormat:    profile.LogFormat,
	}
	cfg.overlay(file)

	if raw := env(EnvHTTPTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvHTTPTimeout, raw, err)
		}
		cfg.HTTPTimeout = d
	}
	cfg.overlay(Config{
		APIKey:        env(EnvAPIKey),
		BaseURL:       env(EnvBaseURL),
		MCPTransport:  env(EnvMCPTransport),
		MCPListen:     env(EnvMCPListen),
		HTTPJWTSecret: env(EnvHTTPJWTSecret),
		LogLevel:      env(EnvLogLevel),
		LogFormat:     env(EnvLogFormat),
		DatabaseURL:   env(EnvDatabaseURL),

		EnrichmentAllowlist: env(EnvAllowlist),
	})
	// An explicitly empty HTTP_LISTEN disables the HTTP server.
	if v, ok := lookup(EnvHTTPListen); ok {
		cfg.HTTPListen = strings.TrimSpace(v)
	}

	cfg.MCPTransport = strings.ToLower(cfg.MCPTransport)
	if cfg.MCPTransport != TransportStdio && cfg.MCPTransport != TransportTCP {
		return nil, fmt.Errorf("invalid %s %q (valid: stdio, tcp)", EnvMCPTransport, cfg.MCPTransport)
	}
	if cfg.HTTPTimeout < 0 {
		return nil, fmt.Errorf("invalid http timeout %s: must not be negative", cfg.HTTPTimeout)
	}
	return cfg, nil
}

// overlay copies every non-zero field of o onto c. Profile is not copied.
func (c *Config) overlay(o Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.APIKey, o.APIKey)
	set(&c.BaseURL, o.BaseURL)
	set(&c.MCPTransport, o.MCPTransport)
	set(&c.MCPListen, o.MCPListen)
	set(&c.HTTPListen, o.HTTPListen)
	set(&c.HTTPJWTSecret, o.HTTPJWTSecret)
	set(&c.LogLevel, o.LogLevel)
	set(&c.LogFormat, o.LogFormat)
	set(&c.DatabaseURL, o.DatabaseURL)
	set(&c.EnrichmentAllowlist, o.EnrichmentAllowlist)
	if o.HTTPTimeout != 0 {
		c.HTTPTimeout = o.HTTPTimeout
	}
}

// Validate checks settings required to serve lookups.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.MCPTransport == TransportTCP && c.MCPListen == "" {
		return fmt.Errorf("%s is required when %s=tcp", EnvMCPListen, EnvMCPTransport)
	}
	return nil
}

// ClientOptions returns the proxycurl client options implied by c.
func (c *Config) ClientOptions() []proxycurl.Option {
	opts := []proxycurl.Option{proxycurl.WithBaseURL(c.BaseURL)}
	if c.HTTPTimeout > 0 {
		opts = append(opts, proxycurl.WithTimeout(c.HTTPTimeout))
	}
	return opts
}

// FlagPolicy returns the enrichment flag allowlist implied by c.
func (c *Config) FlagPolicy() *core.FlagPolicy {
	return core.NewFlagPolicy(c.EnrichmentAllowlist)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
