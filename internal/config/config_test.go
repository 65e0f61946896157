package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drpaneas/devgrowth/internal/llm"
	"github.com/spf13/viper"
)

func validConfig() Config {
	return Config{
		LLM:     LLMConfig{Provider: llm.ProviderOpenAI, APIKey: "sk-fake"},
		Profile: ProfileConfig{MaxRepos: 15},
		Server:  ServerConfig{Port: 8080},
		HTTP:    HTTPConfig{RequestTimeout: time.Minute},
		Logging: LoggingConfig{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid openai config", mutate: func(*Config) {}},
		{
			name: "valid anthropic config",
			mutate: func(c *Config) {
				c.LLM = LLMConfig{Provider: llm.ProviderAnthropic, APIKey: "sk-ant-fake"}
			},
		},
		{
			name:   "valid ollama config without api key",
			mutate: func(c *Config) { c.LLM = LLMConfig{Provider: llm.ProviderOllama} },
		},
		{
			name:   "missing github token is allowed",
			mutate: func(c *Config) { c.GitHub.Token = "" },
		},
		{
			name:    "invalid provider",
			mutate:  func(c *Config) { c.LLM.Provider = "gemini" },
			wantErr: true,
		},
		{
			name:    "openai missing api key",
			mutate:  func(c *Config) { c.LLM.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "max repos zero",
			mutate:  func(c *Config) { c.Profile.MaxRepos = 0 },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero request timeout",
			mutate:  func(c *Config) { c.HTTP.RequestTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "chatty" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultModel(t *testing.T) {
	tests := []struct {
		provider llm.ProviderName
		want     string
	}{
		{llm.ProviderOpenAI, "gpt-4o"},
		{llm.ProviderAnthropic, "claude-sonnet-4-5"},
		{llm.ProviderOllama, "llama3"},
		{"unknown", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			got := DefaultModel(tt.provider)
			if got != tt.want {
				t.Errorf("DefaultModel(%q) = %q, want %q", tt.provider, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("GITHUB_TOKEN", "ghp_env")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LLM.Provider != llm.ProviderOpenAI || cfg.LLM.Model != "gpt-4o" || cfg.LLM.APIKey != "sk-from-env" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.GitHub.Token != "ghp_env" {
		t.Errorf("GitHub.Token = %q", cfg.GitHub.Token)
	}
	if cfg.Profile.MaxRepos != 15 || !cfg.Profile.IncludeForks {
		t.Errorf("Profile = %+v, want 15 repos with forks", cfg.Profile)
	}
	if cfg.HTTP.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want 60s", cfg.HTTP.RequestTimeout)
	}
	if cfg.ServerAddr() != "0.0.0.0:8080" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
}

func TestLoadEnvFileAndOverrides(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "LLM_PROVIDER=ollama\nPROFILE_MAX_REPOS=5\nDEVGROWTH_TEST_ONLY=file\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEVGROWTH_TEST_ONLY", "env")
	t.Cleanup(func() {
		os.Unsetenv("LLM_PROVIDER")
		os.Unsetenv("PROFILE_MAX_REPOS")
	})
	t.Setenv("HTTP_REQUEST_TIMEOUT", "90s")

	v := viper.New()
	v.Set("logging.level", "debug")

	cfg, err := Load(v, envFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LLM.Provider != llm.ProviderOllama || cfg.LLM.Model != "llama3" {
		t.Errorf("LLM = %+v, want ollama from .env", cfg.LLM)
	}
	if cfg.Profile.MaxRepos != 5 {
		t.Errorf("MaxRepos = %d, want 5", cfg.Profile.MaxRepos)
	}
	if cfg.HTTP.RequestTimeout != 90*time.Second {
		t.Errorf("RequestTimeout = %v, want 90s", cfg.HTTP.RequestTimeout)
	}
	if os.Getenv("DEVGROWTH_TEST_ONLY") != "env" {
		t.Error(".env must not replace variables already in the environment")
	}
	if level, _ := cfg.SlogLevel(); level.String() != "DEBUG" {
		t.Errorf("SlogLevel() = %v, want DEBUG", level)
	}
}
