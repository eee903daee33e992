package keyphrase

import (
	"context"
	"fmt"
	"math"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// EmbeddingScorer rates phrases by cosine similarity between their embedding
// and the embedding of the whole document.
type EmbeddingScorer struct {
	embedder ports.Embedder
}

var _ ports.PhraseScorer = (*EmbeddingScorer)(nil)

// NewEmbeddingScorer wraps an embedder.
func NewEmbeddingScorer(embedder ports.Embedder) *EmbeddingScorer {
	return &EmbeddingScorer{embedder: embedder}
}

// ScorePhrases embeds the document and the phrases in one batch.
func (s *EmbeddingScorer) ScorePhrases(ctx context.Context, document string, phrases []string) ([]float64, error) {
	if s == nil || s.embedder == nil {
		return nil, fmt.Errorf("embedding scorer misconfigured")
	}
	if len(phrases) == 0 {
		return nil, nil
	}

	batch := make([]string, 0, len(phrases)+1)
	batch = append(batch, document)
	batch = append(batch, phrases...)

	vectors, err := s.embedder.Embed(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("embed phrases: %w", err)
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("embed phrases: got %d vectors for %d texts", len(vectors), len(batch))
	}

	doc := vectors[0]
	scores := make([]float64, len(phrases))
	for i := range phrases {
		scores[i] = Cosine(doc, vectors[i+1])
	}
	return scores, nil
}

// Cosine returns the cosine similarity of two vectors, or 0 when either is zero
// or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
