// Package config loads runtime configuration from defaults, an optional .env
// file, the environment and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/drpaneas/devgrowth/internal/llm"
	"github.com/drpaneas/devgrowth/internal/profile"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read when present; missing files are ignored.
const DefaultEnvFile = ".env"

// Config holds all runtime configuration for devgrowth.
type Config struct {
	GitHub    GitHubConfig    `mapstructure:"github"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Profile   ProfileConfig   `mapstructure:"profile"`
	Server    ServerConfig    `mapstructure:"server"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Overrides OverridesConfig `mapstructure:"overrides"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// GitHubConfig configures the data source. Token is optional; without it
// GitHub applies the much lower anonymous rate limit.
type GitHubConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

// LLMConfig selects and configures the completion backend.
type LLMConfig struct {
	Provider   llm.ProviderName `mapstructure:"provider"`
	Model      string           `mapstructure:"model"`
	APIKey     string           `mapstructure:"api_key"`
	OllamaHost string           `mapstructure:"ollama_host"`
}

// ProfileConfig bounds profile aggregation.
type ProfileConfig struct {
	MaxRepos     int  `mapstructure:"max_repos"`
	IncludeForks bool `mapstructure:"include_forks"`
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig contains per-request limits.
type HTTPConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// OverridesConfig points at an optional YAML table of fixed reports.
type OverridesConfig struct {
	File string `mapstructure:"file"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load builds a Config from v, which may already have flags bound to it.
// Variables in envFile never replace variables already set in the
// environment.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	if envFile != "" {
		if envMap, err := godotenv.Read(envFile); err == nil {
			for k, val := range envMap {
				if _, exists := os.LookupEnv(k); !exists {
					_ = os.Setenv(k, val)
				}
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LLM.Provider = llm.ProviderName(strings.ToLower(string(cfg.LLM.Provider)))
	if cfg.LLM.APIKey == "" {
		if env := envKeyForProvider(cfg.LLM.Provider); env != "" {
			cfg.LLM.APIKey = os.Getenv(env)
		}
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel(cfg.LLM.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")

	v.SetDefault("llm.provider", string(llm.ProviderOpenAI))
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.ollama_host", "http://localhost:11434")

	v.SetDefault("profile.max_repos", profile.DefaultMaxRepos)
	v.SetDefault("profile.include_forks", true)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("http.request_timeout", 60*time.Second)

	v.SetDefault("overrides.file", "")

	v.SetDefault("logging.level", "info")
}

// bindEnvs maps keys to the conventional variable names used by the
// GitHub and model tooling, in addition to the automatic KEY_NAME form.
func bindEnvs(v *viper.Viper) error {
	bindings := map[string][]string{
		"github.token":    {"GITHUB_TOKEN"},
		"llm.ollama_host": {"OLLAMA_HOST"},
		"logging.level":   {"LOG_LEVEL", "LOGGING_LEVEL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderOllama:
	default:
		return fmt.Errorf("unsupported LLM provider %q: must be openai, anthropic, or ollama", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" && c.LLM.Provider != llm.ProviderOllama {
		return fmt.Errorf("%s requires an API key (set %s or LLM_API_KEY)", c.LLM.Provider, envKeyForProvider(c.LLM.Provider))
	}
	if c.Profile.MaxRepos < 1 {
		return errors.New("profile.max_repos must be at least 1")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.HTTP.RequestTimeout <= 0 {
		return errors.New("http.request_timeout must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SlogLevel parses Logging.Level ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("invalid logging.level %q: %w", c.Logging.Level, err)
	}
	return level, nil
}

// DefaultModel returns the default model name for the given provider.
func DefaultModel(provider llm.ProviderName) string {
	switch provider {
	case llm.ProviderOpenAI:
		return "gpt-4o"
	case llm.ProviderAnthropic:
		return "claude-sonnet-4-5"
	case llm.ProviderOllama:
		return "llama3"
	default:
		return ""
	}
}

func envKeyForProvider(provider llm.ProviderName) string {
	switch provider {
	case llm.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case llm.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}
