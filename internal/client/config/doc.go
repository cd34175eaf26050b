// Package config loads runtime configuration for bmctl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c/--config.
//  3. Flags set explicitly on the command line.
//
// # File schema
//
//	{
//	  "server_url": "https://api.boostmanager.example",
//	  "session_db": "/home/me/.bmctl/session.db",
//	  "request_timeout": "10s"
//	}
package config
