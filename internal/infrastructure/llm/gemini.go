package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// GeminiOracle is a thin wrapper around the official genai client.
type GeminiOracle struct {
	cli     *genai.Client
	model   string
	timeout time.Duration
}

var _ ports.Oracle = (*GeminiOracle)(nil)

// NewGeminiOracle creates a Gemini API client. An empty apiKey lets the SDK
// fall back to GEMINI_API_KEY / GOOGLE_API_KEY.
func NewGeminiOracle(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiOracle, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GeminiOracle{cli: cli, model: model, timeout: timeout}, nil
}

// Complete sends the prompt as a single user turn.
func (g *GeminiOracle) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temp := float32(0)
	resp, err := g.cli.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", classifyGeminiError(err))
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrOracleUnavailable)
	}
	return text, nil
}

func classifyGeminiError(err error) error {
	if isGeminiRateLimit(err) {
		return fmt.Errorf("%w: %w", domain.ErrOracleRateLimited, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrOracleUnavailable, err)
}

func isGeminiRateLimit(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == "RESOURCE_EXHAUSTED"
	}
	return false
}
