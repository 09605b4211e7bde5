package config

import "time"

// Config holds runtime settings for the Librarian CLI.
type Config struct {
	// ServerEndpointAddr is the base URL of the sync server API.
	ServerEndpointAddr string
	// DatabasePath is the SQLite file holding the local store.
	DatabasePath string
	// RequestTimeout bounds every API request.
	RequestTimeout time.Duration
	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "librarian.db"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
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
