package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/thinkscotty/fakenews/internal/auth"
)

// Environment variables that override the YAML credentials.
const (
	EnvAPIKey  = "OPENROUTER_API_KEY"
	EnvBaseURL = "OPENROUTER_API_URL"
)

// DefaultEnvFile is the credentials file read at startup when present.
const DefaultEnvFile = "connection.env"

type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

type LLMConfig struct {
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	SmallModel      string `yaml:"small_model"`
	StructuredModel string `yaml:"structured_model"`
	MaxTokens       int    `yaml:"max_tokens"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

type ScraperConfig struct {
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Mode           string `yaml:"mode"` // "full" or "article"
}

type PipelineConfig struct {
	URL        string `yaml:"url"`
	Concurrent bool   `yaml:"concurrent"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // empty disables the run ledger
}

type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	APIKey              string `yaml:"api_key"`
	APIKeyHash          string `yaml:"api_key_hash"` // bcrypt hash, see "fakenews keygen"
}

func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			BaseURL:         "https://openrouter.ai/api/v1/",
			Model:           "meta-llama/llama-3.3-70b-instruct:free",
			SmallModel:      "meta-llama/llama-3.2-1b-instruct:free",
			StructuredModel: "google/gemini-flash-1.5-8b",
			MaxTokens:       500,
			TimeoutSeconds:  120,
		},
		Scraper: ScraperConfig{
			UserAgent:      "fakenews/1.0 (+https://github.com/thinkscotty/fakenews)",
			TimeoutSeconds: 30,
			Mode:           "full",
		},
		Pipeline: PipelineConfig{
			URL: "https://edition.cnn.com/entertainment",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Host:                "127.0.0.1",
			Port:                8080,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 300,
		},
	}
}

// Load reads a YAML config file and merges it over defaults.
// If the file does not exist, defaults are returned without error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("No config file found, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// FindConfigFile returns the config file to load when none was given on the
// command line: ./config.yaml, then the XDG config directory. When neither
// exists the local path is returned so Load falls back to defaults.
func FindConfigFile() string {
	const local = "config.yaml"
	if _, err := os.Stat(local); err == nil {
		return local
	}
	if p, err := xdg.SearchConfigFile("fakenews/config.yaml"); err == nil {
		return p
	}
	return local
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overwriting variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("No env file found", "path", path)
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	slog.Debug("Loaded env file", "path", path)
	return nil
}

// ApplyEnv overlays credentials from the environment onto the config.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIKey); ok && strings.TrimSpace(v) != "" {
		c.LLM.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvBaseURL); ok && strings.TrimSpace(v) != "" {
		c.LLM.BaseURL = strings.TrimSpace(v)
	}
}

// Validate checks the settings that would otherwise fail late. The API key is
// left alone: a missing key surfaces as a model request error on first use.
func (c *Config) Validate() error {
	var errs []error
	if c.LLM.BaseURL == "" {
		errs = append(errs, errors.New("llm.base_url must be set"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model must be set"))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	switch c.Scraper.Mode {
	case "full", "article":
	default:
		errs = append(errs, fmt.Errorf("scraper.mode must be \"full\" or \"article\", got %q", c.Scraper.Mode))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.APIKeyHash != "" && !auth.ValidHash(c.Server.APIKeyHash) {
		errs = append(errs, errors.New("server.api_key_hash is not a bcrypt hash"))
	}
	return errors.Join(errs...)
}

// StructuredModelOrSmall returns the model used for the structured summary.
func (c *Config) StructuredModelOrSmall() string {
	if c.LLM.StructuredModel != "" {
		return c.LLM.StructuredModel
	}
	return c.LLM.SmallModel
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) ScraperTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSeconds) * time.Second
}

// LogLevel maps logging.level to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
