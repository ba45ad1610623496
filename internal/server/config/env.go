package config

import "github.com/kelseyhightower/envconfig"

// EnvPrefix namespaces the server's environment variables, e.g.
// JOURNAL_DATABASE_DSN.
const EnvPrefix = "JOURNAL"

// parseEnv overlays JOURNAL_* variables. Unset variables leave the current
// value alone; a malformed value panics like the other layers.
func parseEnv(config *Config) {
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		panic(err)
	}
}
