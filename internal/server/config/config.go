// Package config handles configuration for the server,
// including defaults, JSON overlay, and command-line flags.
package config

import "golang.org/x/crypto/bcrypt"

// Config holds runtime settings for the bujotrack server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - DatabaseDSN: a postgres:// URL (pgx) or an SQLite file path.
//   - BcryptCost: cost factor for password hashing.
type Config struct {
	EndpointAddrHTTP string
	DatabaseDSN      string
	BcryptCost       int
}

// LoadDefaults populates Config with development defaults: a local SQLite
// database file and the standard bcrypt cost.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.DatabaseDSN = "bujotrack.db"
	c.BcryptCost = bcrypt.DefaultCost
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
