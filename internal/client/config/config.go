package config

import "time"

// Config holds runtime settings for the journal CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - RequestTimeout: deadline applied to each backend call.
//   - SessionDBPath: SQLite file holding the persisted session.
//   - GeminiAPIKey / GeminiModel / GeminiBaseURL: annotation service settings.
//     Without a key annotation requests fail with a configuration error.
//   - AnnotateTimeout: deadline for one annotation request.
//   - LogLevel: zerolog level name.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	SessionDBPath      string
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	AnnotateTimeout    time.Duration
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.SessionDBPath = "gophjournal.db"
	c.GeminiModel = "gemini-2.5-flash"
	c.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	c.AnnotateTimeout = 30 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config from defaults, JSON, the environment and
// flags, in that order.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
