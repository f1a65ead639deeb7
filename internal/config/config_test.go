package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestLoadProfileDefaults(t *testing.T) {
	cfg, err := load(lookupFrom(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Profile)
	assert.Equal(t, proxycurl.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, TransportStdio, cfg.MCPTransport)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Empty(t, cfg.HTTPListen)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}

func TestLoadEnvOverridesProfile(t *testing.T) {
	cfg, err := load(lookupFrom(map[string]string{
		EnvProfile:      "prod",
		EnvAPIKey:       " secret ",
		EnvHTTPTimeout:  "5s",
		EnvLogLevel:     "warn",
		EnvHTTPListen:   "",
		EnvMCPTransport: "STDIO",
	}))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Profile)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, TransportStdio, cfg.MCPTransport)
	assert.Empty(t, cfg.HTTPListen, "explicitly empty HTTP_LISTEN disables the server")
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileBetweenProfileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxycurl-mcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profile: staging
base_url: https://file.example.com/api
http_timeout: 90s
log_format: console
database_url: postgres://file
`), 0o600))

	cfg, err := load(lookupFrom(map[string]string{
		EnvConfigFile:  path,
		EnvDatabaseURL: "postgres://env",
	}))
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Profile)
	assert.Equal(t, "https://file.example.com/api", cfg.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPListen)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown profile", env: map[string]string{EnvProfile: "qa"}},
		{name: "bad timeout", env: map[string]string{EnvHTTPTimeout: "soon"}},
		{name: "negative timeout", env: map[string]string{EnvHTTPTimeout: "-1s"}},
		{name: "bad transport", env: map[string]string{EnvMCPTransport: "websocket"}},
		{name: "missing file", env: map[string]string{EnvConfigFile: "/nonexistent/proxycurl-mcp.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestValidateTCPRequiresListen(t *testing.T) {
	cfg := &Config{APIKey: "k", MCPTransport: TransportTCP}
	err := cfg.Validate()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingAPIKey))
}

func TestClientOptions(t *testing.T) {
	cfg := &Config{BaseURL: "http://localhost:1", HTTPTimeout: time.Second}
	assert.Len(t, cfg.ClientOptions(), 2)

	cfg.HTTPTimeout = 0
	assert.Len(t, cfg.ClientOptions(), 1)
}

func TestProdProfileKeepsTransportDefaultTimeout(t *testing.T) {
	cfg, err := load(lookupFrom(map[string]string{EnvProfile: "prod", EnvAPIKey: "k"}))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Len(t, cfg.ClientOptions(), 1, "no WithTimeout unless PROXYCURL_HTTP_TIMEOUT is set")
}

func TestFlagPolicyFromAllowlist(t *testing.T) {
	cfg, err := load(lookupFrom(map[string]string{
		EnvAllowlist: "skills,extra",
	}))
	require.NoError(t, err)
	assert.Equal(t, "skills,extra", cfg.EnrichmentAllowlist)

	policy := cfg.FlagPolicy()
	assert.NoError(t, policy.Check(proxycurl.Flags{Skills: proxycurl.Include}))
	assert.Error(t, policy.Check(proxycurl.Flags{PersonalEmail: proxycurl.Include}))
}
