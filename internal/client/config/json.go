package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/locallibrarian/librarian/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// given as strings understood by time.ParseDuration, e.g. "10s".
type JsonConfig struct {
	ServerEndpointAddr  string `json:"server_endpoint_addr"`
	DatabasePath        string `json:"database_path"`
	RequestTimeout      string `json:"request_timeout"`
	OnlineCheckInterval string `json:"online_check_interval"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c or -config flag. When neither flag is given the function is a no-op.
// Read and parse errors panic; the process cannot run misconfigured.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout != "" {
		d, err := time.ParseDuration(jc.RequestTimeout)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if jc.OnlineCheckInterval != "" {
		d, err := time.ParseDuration(jc.OnlineCheckInterval)
		if err != nil {
			panic(err)
		}
		cfg.OnlineCheckInterval = d
	}
}
