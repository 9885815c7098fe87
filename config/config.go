// Package config loads runtime settings from a JSON file, a .env file and
// AETHELRED_* environment variables, in increasing order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "AETHELRED_"

// Config holds server and model settings.
type Config struct {
	ServerAddr            string     `json:"server_addr,omitempty"`
	CORSOrigins           []string   `json:"cors_origins,omitempty"`
	LogLevel              string     `json:"log_level,omitempty"`
	SeedExamples          bool       `json:"seed_examples,omitempty"`
	TemplatesPath         string     `json:"templates_path,omitempty"`
	RequestTimeoutSeconds int        `json:"request_timeout_seconds,omitempty"`
	LLM                   *LLMConfig `json:"llm,omitempty"`
}

// LLMConfig selects the drafting model.
type LLMConfig struct {
	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	APIKey      string   `json:"api_key,omitempty"`
	BaseURL     string   `json:"base_url,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		ServerAddr:            ":8080",
		CORSOrigins:           []string{"http://localhost:5173"},
		LogLevel:              "info",
		RequestTimeoutSeconds: 60,
	}
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig reads JSON config from disk, then applies environment
// overrides. A missing file is not an error: defaults and environment
// still apply.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config file: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(envPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("SERVER_ADDR"); ok {
		cfg.ServerAddr = v
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("SEED_EXAMPLES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sSEED_EXAMPLES: %w", envPrefix, err)
		}
		cfg.SeedExamples = b
	}
	if v, ok := get("TEMPLATES_PATH"); ok {
		cfg.TemplatesPath = v
	}
	if v, ok := get("REQUEST_TIMEOUT_SECONDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREQUEST_TIMEOUT_SECONDS: %w", envPrefix, err)
		}
		cfg.RequestTimeoutSeconds = n
	}

	llm := cfg.LLM
	if llm == nil {
		llm = &LLMConfig{}
	}
	touched := false
	for key, dst := range map[string]*string{
		"LLM_PROVIDER": &llm.Provider,
		"LLM_MODEL":    &llm.Model,
		"LLM_API_KEY":  &llm.APIKey,
		"LLM_BASE_URL": &llm.BaseURL,
	} {
		if v, ok := get(key); ok {
			*dst = v
			touched = true
		}
	}
	if v, ok := get("LLM_TEMPERATURE"); ok {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sLLM_TEMPERATURE: %w", envPrefix, err)
		}
		llm.Temperature = &t
		touched = true
	}
	// Provider SDK conventions as a last resort for the key.
	if llm.APIKey == "" {
		var key string
		switch llm.Provider {
		case "openai":
			key, _ = lookup("OPENAI_API_KEY")
		case "deepseek":
			key, _ = lookup("DEEPSEEK_API_KEY")
		case "anthropic":
			key, _ = lookup("ANTHROPIC_API_KEY")
		}
		if key != "" {
			llm.APIKey = key
			touched = true
		}
	}
	if touched || cfg.LLM != nil {
		cfg.LLM = llm
	}
	return nil
}

// Validate reports settings that can never work.
func (c Config) Validate() error {
	if c.RequestTimeoutSeconds < 0 {
		return errors.New("request_timeout_seconds must not be negative")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LLM != nil && c.LLM.Temperature != nil {
		if t := *c.LLM.Temperature; t < 0 || t > 2 {
			return fmt.Errorf("llm.temperature %.2f out of range [0, 2]", t)
		}
	}
	return nil
}

// RequestTimeout bounds each model call.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ParseLogLevel maps debug/info/warn/error to slog levels. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
