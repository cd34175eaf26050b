package config

import "time"

// Config holds runtime settings for bmctl.
//
// Fields:
//   - ServerURL: base URL of the BoostManager API.
//   - SessionDB: path of the local SQLite file holding the session.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerURL      string
	SessionDB      string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SessionDB = "~/.bmctl/session.db"
	c.RequestTimeout = 10 * time.Second
}
