package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ── Load / Defaults ──

func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range []string{
		"WEALTHWAVE_LLM_OPENAI_KEY", "OPENAI_API_KEY", "OLLAMA_BASE_URL",
		"OLLAMA_MODEL", "VITE_API_BASE_URL", "WEALTHWAVE_API_PORT",
	} {
		if v, ok := os.LookupEnv(e); ok {
			os.Unsetenv(e)
			t.Cleanup(func() { os.Setenv(e, v) })
		}
	}
}

func TestLoadReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// LLM defaults
	if cfg.LLM.Primary != "ollama" {
		t.Errorf("LLM.Primary: got %q, want %q", cfg.LLM.Primary, "ollama")
	}
	if cfg.LLM.Model != "qwen2:0.5b" {
		t.Errorf("LLM.Model: got %q", cfg.LLM.Model)
	}
	if cfg.LLM.OllamaURL != "http://localhost:11434" {
		t.Errorf("LLM.OllamaURL: got %q", cfg.LLM.OllamaURL)
	}
	if cfg.LLM.Temperature != 0.7 || cfg.LLM.TopP != 0.9 || cfg.LLM.MaxTokens != 300 {
		t.Errorf("LLM sampling defaults: got %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout() != 120*time.Second {
		t.Errorf("LLM.Timeout: got %s", cfg.LLM.Timeout())
	}

	// Chat / API defaults
	if cfg.Chat.BaseURL != "http://localhost:8000/api/v1" {
		t.Errorf("Chat.BaseURL: got %q", cfg.Chat.BaseURL)
	}
	if cfg.API.Addr() != "0.0.0.0:8000" {
		t.Errorf("API.Addr: got %q", cfg.API.Addr())
	}
	if len(cfg.API.CORSOrigins) != 2 {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}

	// Market defaults
	if cfg.Market.Interval() != 12*time.Second {
		t.Errorf("Market.Interval: got %s", cfg.Market.Interval())
	}
	if cfg.Market.Window != 7 {
		t.Errorf("Market.Window: got %d", cfg.Market.Window)
	}
	if len(cfg.Market.Instruments) != 2 || cfg.Market.Instruments[0].Symbol != "NIFTY" {
		t.Errorf("Market.Instruments: got %+v", cfg.Market.Instruments)
	}

	// Tax / Learn / Logging defaults
	if len(cfg.Tax.Slabs) != 6 {
		t.Errorf("Tax.Slabs: got %d slabs, want 6", len(cfg.Tax.Slabs))
	}
	if len(cfg.Learn.Feeds) == 0 {
		t.Error("Learn.Feeds should default to the built-in reading list")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging: got %+v", cfg.Logging)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
llm:
  primary: openai
  model: gpt-4o-mini
  openai_key: sk-file-key-abcdef
api:
  port: 9090
market:
  interval_sec: 5
  window: 10
  instruments:
    - symbol: SENSEX
      name: BSE Sensex
      price: 66000
      floor: 65000
      amplitude: 40
tax:
  slabs:
    - up_to: 400000
      rate: 0
    - up_to: 0
      rate: 0.1
web:
  dist_dir: ./client/dist
logging:
  level: debug
  format: json
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if cfg.File() != cfgPath {
		t.Errorf("File: got %q, want %q", cfg.File(), cfgPath)
	}
	if cfg.LLM.Primary != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM: got %+v", cfg.LLM)
	}
	if cfg.LLM.OpenAIKey != "sk-file-key-abcdef" {
		t.Errorf("LLM.OpenAIKey: got %q", cfg.LLM.OpenAIKey)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d", cfg.API.Port)
	}
	if cfg.Market.IntervalSec != 5 || cfg.Market.Window != 10 {
		t.Errorf("Market: got %+v", cfg.Market)
	}
	if len(cfg.Market.Instruments) != 1 || cfg.Market.Instruments[0].Floor != 65000 {
		t.Errorf("Market.Instruments: got %+v", cfg.Market.Instruments)
	}
	if len(cfg.Tax.Slabs) != 2 || !cfg.Tax.Slabs[1].Unbounded() || cfg.Tax.Slabs[1].Rate != 0.1 {
		t.Errorf("Tax.Slabs: got %+v", cfg.Tax.Slabs)
	}
	if cfg.Web.DistDir != "./client/dist" {
		t.Errorf("Web.DistDir: got %q", cfg.Web.DistDir)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q", cfg.Logging.Format)
	}
	// Unset values keep their defaults.
	if cfg.LLM.OllamaURL != "http://localhost:11434" {
		t.Errorf("LLM.OllamaURL: got %q", cfg.LLM.OllamaURL)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent config file")
	}
}

func TestLoadFromFileRejectsInvalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad port", "api:\n  port: 70000\n", "api.port"},
		{"bad interval", "market:\n  interval_sec: 0\n", "interval_sec"},
		{"bad slabs", "tax:\n  slabs:\n    - up_to: 500\n      rate: 0.1\n", "tax.slabs"},
		{"bad provider", "llm:\n  primary: gemini\n", "llm.primary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFromFile(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadFromFile() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromFileReadsDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	env := "OLLAMA_MODEL=llama3.2:1b\nVITE_API_BASE_URL=http://api.example.test/api/v1\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("OLLAMA_MODEL")
		os.Unsetenv("VITE_API_BASE_URL")
	})

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.LLM.Model != "llama3.2:1b" {
		t.Errorf("LLM.Model from .env: got %q", cfg.LLM.Model)
	}
	if cfg.Chat.BaseURL != "http://api.example.test/api/v1" {
		t.Errorf("Chat.BaseURL from .env: got %q", cfg.Chat.BaseURL)
	}
}

func TestEnvOverridesFileValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  port: 9090\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WEALTHWAVE_API_PORT", "9191")
	t.Setenv("WEALTHWAVE_LLM_OPENAI_KEY", "sk-test-openai-key-123456")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.API.Port != 9191 {
		t.Errorf("API.Port: got %d, want 9191", cfg.API.Port)
	}
	if cfg.LLM.OpenAIKey != "sk-test-openai-key-123456" {
		t.Errorf("LLM.OpenAIKey: got %q", cfg.LLM.OpenAIKey)
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.File() != "" {
		t.Errorf("Default should not report a config file, got %q", cfg.File())
	}
}

func TestTrustProxyDefaultsOff(t *testing.T) {
	clearEnv(t)

	if Default().API.TrustProxy {
		t.Error("API.TrustProxy must default to false")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  trust_proxy: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if !cfg.API.TrustProxy {
		t.Error("api.trust_proxy from file was not applied")
	}
}
