package core

import (
	"fmt"
	"strings"
	"time"
)

// ProfileDefaults holds environment-specific default configuration values.
// Profiles provide defaults only. Config files and env vars override them.
type ProfileDefaults struct {
	Name string
	// Zero in every profile: lookups run on transport defaults unless
	// PROXYCURL_HTTP_TIMEOUT opts in.
	HTTPTimeout  time.Duration
	LogLevel     string
	LogFormat    string
	MCPTransport string
	MCPListen    string
	HTTPListen   string
}

var profiles = map[string]*ProfileDefaults{
	"dev": {
		Name:         "dev",
		HTTPTimeout:  0,
		LogLevel:     "debug",
		LogFormat:    "console",
		MCPTransport: "stdio",
		MCPListen:    "127.0.0.1:8090",
		HTTPListen:   "",
	},
	"staging": {
		Name:         "staging",
		HTTPTimeout:  0,
		LogLevel:     "info",
		LogFormat:    "json",
		MCPTransport: "stdio",
		MCPListen:    "0.0.0.0:8090",
		HTTPListen:   "0.0.0.0:8080",
	},
	"prod": {
		Name:         "prod",
		HTTPTimeout:  0,
		LogLevel:     "info",
		LogFormat:    "json",
		MCPTransport: "tcp",
		MCPListen:    "0.0.0.0:8090",
		HTTPListen:   "0.0.0.0:8080",
	},
}

// LoadProfile returns profile defaults for the given name.
// Empty name defaults to "dev". Unknown names return an error.
func LoadProfile(name string) (*ProfileDefaults, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = "dev"
	}
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (valid: dev, staging, prod)", name)
	}
	copy := *p
	return &copy, nil
}
