// Package config loads configuration for the journal CLI: defaults, an
// optional JSON file (-c/-config), the Gemini API key from the environment,
// then command-line flags. Later sources win.
package config
