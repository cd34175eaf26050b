package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/boostmanager/internal/flagx"
	"github.com/dmitrijs2005/boostmanager/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Intervals use
// timex.Duration so either "10s" or integer nanoseconds are accepted.
type FileConfig struct {
	ServerURL      string         `json:"server_url" yaml:"server_url"`
	SessionDB      string         `json:"session_db" yaml:"session_db"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// parseFile overlays cfg with the JSON or YAML file at path. Empty values in
// the file leave cfg untouched.
func parseFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	if flagx.ConfigFormat(path) == flagx.FormatYAML {
		err = yaml.Unmarshal(data, &fc)
	} else {
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.SessionDB != "" {
		cfg.SessionDB = fc.SessionDB
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	return nil
}
