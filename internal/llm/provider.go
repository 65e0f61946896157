// Package llm wraps the supported completion backends behind one interface.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ProviderName identifies a supported LLM provider.
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderOllama    ProviderName = "ollama"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1500
)

// ErrEmptyCompletion is returned when a backend answers with no text.
var ErrEmptyCompletion = errors.New("completion returned no content")

// ProviderConfig holds the configuration needed to construct a Provider.
// Zero Temperature and MaxTokens select package defaults.
type ProviderConfig struct {
	Name        ProviderName
	APIKey      string
	Model       string
	OllamaHost  string
	Temperature float32
	MaxTokens   int
}

// Provider abstracts an LLM completion backend. Implementations keep no
// per-request state and are safe for concurrent use.
type Provider interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// NewProvider creates a Provider for the given configuration.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	switch cfg.Name {
	case ProviderOpenAI:
		return newOpenAI(cfg), nil
	case ProviderAnthropic:
		return newAnthropic(cfg), nil
	case ProviderOllama:
		return newOllama(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Name)
	}
}
