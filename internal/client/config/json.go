package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/srefhub/internal/flagx"
	"github.com/dmitrijs2005/srefhub/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "5s" or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	DataDir            string         `json:"data_dir"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the file named by
// -c/-config (or $SREFHUB_CONFIG). Keys missing from the file keep their
// current value. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
