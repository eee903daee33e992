package embedding

import (
	"context"
	"fmt"

	genai "google.golang.org/genai"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// DefaultGeminiModel is used when no embedding model is configured.
const DefaultGeminiModel = "text-embedding-004"

// Gemini embeds texts with the Gemini embedding API in a single batch.
type Gemini struct {
	cli   *genai.Client
	model string
	dims  int32
}

var _ ports.Embedder = (*Gemini)(nil)

// NewGemini creates a Gemini API client. dims <= 0 keeps the model default.
func NewGemini(ctx context.Context, apiKey, model string, dims int) (*Gemini, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{cli: cli, model: model, dims: int32(dims)}, nil
}

func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	var cfg *genai.EmbedContentConfig
	if g.dims > 0 {
		dims := g.dims
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &dims}
	}

	resp, err := g.cli.Models.EmbedContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embed: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}
