package config

import "github.com/kelseyhightower/envconfig"

// envKeys lists the variables that may carry the Gemini API key.
// GEMINI_API_KEY wins over API_KEY.
type envKeys struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	APIKey       string `envconfig:"API_KEY"`
}

func parseEnv(cfg *Config) {
	var e envKeys
	if err := envconfig.Process("", &e); err != nil {
		panic(err)
	}
	switch {
	case e.GeminiAPIKey != "":
		cfg.GeminiAPIKey = e.GeminiAPIKey
	case e.APIKey != "":
		cfg.GeminiAPIKey = e.APIKey
	}
}
