package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags are the global bmctl flags. They are registered on the root
// command and applied after the config file.
type Flags struct {
	fs         *pflag.FlagSet
	configFile string
	serverURL  string
	sessionDB  string
	timeout    time.Duration
}

// RegisterFlags adds the global flags to fs.
//
//	-c, --config   path to a JSON or YAML config file
//	-a, --server   API base URL
//	    --db       session database path
//	    --timeout  request timeout
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	var d Config
	d.LoadDefaults()

	f := &Flags{fs: fs}
	fs.StringVarP(&f.configFile, "config", "c", "", "path to config file")
	fs.StringVarP(&f.serverURL, "server", "a", d.ServerURL, "BoostManager API base URL")
	fs.StringVar(&f.sessionDB, "db", d.SessionDB, "session database path")
	fs.DurationVar(&f.timeout, "timeout", d.RequestTimeout, "request timeout")
	return f
}

// Load builds a Config from defaults, then the config file, then any flag
// set explicitly on the command line.
func (f *Flags) Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, f.configFile); err != nil {
		return nil, err
	}

	if f.fs.Changed("server") {
		cfg.ServerURL = f.serverURL
	}
	if f.fs.Changed("db") {
		cfg.SessionDB = f.sessionDB
	}
	if f.fs.Changed("timeout") {
		cfg.RequestTimeout = f.timeout
	}
	return cfg, nil
}
