package config

import "time"

// Config holds runtime settings for the mailvault CLI.
//
// Fields:
//   - ServerBaseURL: root of the server's JSON API, including the /api prefix.
//   - RequestTimeout: bound on every network operation.
//   - TokensPath: where the persisted token record lives.
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	TokensPath     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080/api"
	c.RequestTimeout = 10 * time.Second
	c.TokensPath = "tokens.json"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
