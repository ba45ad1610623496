package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophjournal/internal/flagx"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI configuration.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	SessionDBPath      string         `json:"session_db_path"`
	GeminiAPIKey       string         `json:"gemini_api_key"`
	GeminiModel        string         `json:"gemini_model"`
	GeminiBaseURL      string         `json:"gemini_base_url"`
	AnnotateTimeout    timex.Duration `json:"annotate_timeout"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config. Keys absent from
// the file keep their current values. Read or parse failures panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	setString(&cfg.SessionDBPath, jc.SessionDBPath)
	setString(&cfg.GeminiAPIKey, jc.GeminiAPIKey)
	setString(&cfg.GeminiModel, jc.GeminiModel)
	setString(&cfg.GeminiBaseURL, jc.GeminiBaseURL)
	if jc.AnnotateTimeout.Duration > 0 {
		cfg.AnnotateTimeout = jc.AnnotateTimeout.Duration
	}
	setString(&cfg.LogLevel, jc.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
