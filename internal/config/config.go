// Package config provides runtime configuration loaded from env vars.
package config

import (
	"os"
	"strconv"

	"github.com/go-faster/errors"
)

// Config holds runtime configuration for the server.
type Config struct {
	GitHubToken   string // GITHUB_PERSONAL_ACCESS_TOKEN — required
	GitHubBaseURL string // GITHUB_API_BASE_URL — default: "https://api.github.com"
	Transport     string // MCP_TRANSPORT — "stdio" or "http", default: "stdio"
	Port          string // PORT — default: "8089" (http transport only)
	AuthSecret    string // MCP_AUTH_SECRET — optional, enables bearer auth on http
	RateLimitRPS  int    // RATE_LIMIT_RPS — default: 10 (http transport only)
}

const (
	envKeyGitHubToken   = "GITHUB_PERSONAL_ACCESS_TOKEN"
	envKeyGitHubBaseURL = "GITHUB_API_BASE_URL"
	envKeyTransport     = "MCP_TRANSPORT"
	envKeyPort          = "PORT"
	envKeyAuthSecret    = "MCP_AUTH_SECRET"
	envKeyRateLimitRPS  = "RATE_LIMIT_RPS"
)

// Load reads configuration from environment variables, applying
// defaults for missing values. The GitHub token is required; startup
// must fail without it rather than deferring the error to the first
// tool call.
func Load() (Config, error) {
	cfg := Config{
		GitHubToken:   os.Getenv(envKeyGitHubToken),
		GitHubBaseURL: envOr(envKeyGitHubBaseURL, "https://api.github.com"),
		Transport:     envOr(envKeyTransport, "stdio"),
		Port:          envOr(envKeyPort, "8089"),
		AuthSecret:    os.Getenv(envKeyAuthSecret),
		RateLimitRPS:  10,
	}

	if cfg.GitHubToken == "" {
		return Config{}, errors.Errorf("%s environment variable is not set", envKeyGitHubToken)
	}

	if cfg.Transport != "stdio" && cfg.Transport != "http" {
		return Config{}, errors.Errorf("invalid %s: %q (want stdio or http)", envKeyTransport, cfg.Transport)
	}

	if v := os.Getenv(envKeyRateLimitRPS); v != "" {
		rps, err := strconv.Atoi(v)
		if err != nil || rps <= 0 {
			return Config{}, errors.Errorf("invalid %s: %q", envKeyRateLimitRPS, v)
		}
		cfg.RateLimitRPS = rps
	}

	return cfg, nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
