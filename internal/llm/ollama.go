package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type ollamaProvider struct {
	host    string
	model   string
	options ollamaOptions
	client  *http.Client
}

func newOllama(cfg ProviderConfig) *ollamaProvider {
	return &ollamaProvider{
		host:    strings.TrimRight(cfg.OllamaHost, "/"),
		model:   cfg.Model,
		options: ollamaOptions{Temperature: cfg.Temperature, NumPredict: cfg.MaxTokens},
		// Deadlines come from the request context.
		client: &http.Client{},
	}
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	System  string        `json:"system,omitempty"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (p *ollamaProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   p.model,
		System:  system,
		Prompt:  prompt,
		Options: p.options,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	if result.Response == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyCompletion)
	}
	return result.Response, nil
}
