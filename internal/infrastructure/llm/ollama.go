package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// DefaultOllamaURL is where a local Ollama daemon listens.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaOracle completes prompts with a locally served model.
type OllamaOracle struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ ports.Oracle = (*OllamaOracle)(nil)

// NewOllamaOracle points at baseURL, or DefaultOllamaURL when empty.
func NewOllamaOracle(baseURL, model string, timeout time.Duration) *OllamaOracle {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &OllamaOracle{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: newHTTPClient(timeout),
	}
}

// Complete calls /api/generate without streaming.
func (o *OllamaOracle) Complete(ctx context.Context, prompt string) (string, error) {
	if o.model == "" {
		return "", fmt.Errorf("%w: ollama model not set", domain.ErrOracleUnavailable)
	}

	payload := map[string]any{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": 0,
		},
	}
	var resp struct {
		Response string `json:"response"`
	}
	if err := postJSON(ctx, o.httpClient, o.baseURL+"/api/generate", nil, payload, &resp); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrOracleUnavailable)
	}
	return resp.Response, nil
}
