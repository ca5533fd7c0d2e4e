package config

import "time"

// Config holds runtime settings for the srefhub terminal client.
//
// RequestTimeout bounds every call to the server; a vote that times out is
// reported as a failed vote and rolled back locally. DataDir is created
// under the working directory and holds the session database.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	DataDir            string
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 5 * time.Second
	c.DataDir = ".srefhub"
	c.LogLevel = "warn"
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
