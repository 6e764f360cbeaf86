package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.MaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want 500", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.BaseURL != "https://openrouter.ai/api/v1/" {
		t.Errorf("BaseURL = %q", cfg.LLM.BaseURL)
	}
	if cfg.Scraper.Mode != "full" {
		t.Errorf("Scraper.Mode = %q, want full", cfg.Scraper.Mode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
llm:
  model: test/model
  max_tokens: 200
pipeline:
  url: https://example.com/news
  concurrent: true
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "test/model" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 200 {
		t.Errorf("MaxTokens = %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.StructuredModel != "google/gemini-flash-1.5-8b" {
		t.Errorf("StructuredModel should keep its default, got %q", cfg.LLM.StructuredModel)
	}
	if cfg.Pipeline.URL != "https://example.com/news" || !cfg.Pipeline.Concurrent {
		t.Errorf("Pipeline = %+v", cfg.Pipeline)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIKey:  "  sk-or-test  ",
		EnvBaseURL: "http://localhost:9999/v1/",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv(lookup)
	if cfg.LLM.APIKey != "sk-or-test" {
		t.Errorf("APIKey = %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.BaseURL != "http://localhost:9999/v1/" {
		t.Errorf("BaseURL = %q", cfg.LLM.BaseURL)
	}

	cfg = DefaultConfig()
	cfg.LLM.APIKey = "from-yaml"
	cfg.ApplyEnv(func(string) (string, bool) { return "", false })
	if cfg.LLM.APIKey != "from-yaml" {
		t.Errorf("unset env should not clear key, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), "connection.env")
	if err := os.WriteFile(path, []byte("FAKENEWS_TEST_KEY=abc123\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FAKENEWS_TEST_KEY", "")
	os.Unsetenv("FAKENEWS_TEST_KEY")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("FAKENEWS_TEST_KEY"); got != "abc123" {
		t.Errorf("FAKENEWS_TEST_KEY = %q, want abc123", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"article mode", func(c *Config) { c.Scraper.Mode = "article" }, false},
		{"unknown mode", func(c *Config) { c.Scraper.Mode = "headless" }, true},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }, true},
		{"no model", func(c *Config) { c.LLM.Model = "" }, true},
		{"no base url", func(c *Config) { c.LLM.BaseURL = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty api key is allowed", func(c *Config) { c.LLM.APIKey = "" }, false},
		{"bcrypt key hash", func(c *Config) {
			c.Server.APIKeyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"
		}, false},
		{"plain text key hash", func(c *Config) { c.Server.APIKeyHash = "secret" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStructuredModelOrSmall(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.StructuredModelOrSmall(); got != "google/gemini-flash-1.5-8b" {
		t.Errorf("got %q", got)
	}
	cfg.LLM.StructuredModel = ""
	if got := cfg.StructuredModelOrSmall(); got != cfg.LLM.SmallModel {
		t.Errorf("got %q, want small model %q", got, cfg.LLM.SmallModel)
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Config{Logging: LoggingConfig{Level: tt.level}}
			if got := cfg.LogLevel(); got != tt.want {
				t.Errorf("LogLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}
