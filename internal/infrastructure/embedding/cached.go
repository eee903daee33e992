package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// Cached memoises embeddings per text. Only cache misses reach the wrapped embedder,
// in one batch.
type Cached struct {
	next  ports.Embedder
	cache *lru.Cache[string, []float32]
}

var _ ports.Embedder = (*Cached)(nil)

// NewCached keeps up to size vectors.
func NewCached(next ports.Embedder, size int) (*Cached, error) {
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	missIdx := map[string][]int{}

	for i, t := range texts {
		if v, ok := c.cache.Get(t); ok {
			out[i] = v
			continue
		}
		if _, queued := missIdx[t]; !queued {
			missing = append(missing, t)
		}
		missIdx[t] = append(missIdx[t], i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := c.next.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embedding cache: got %d vectors for %d texts", len(vectors), len(missing))
	}
	for j, t := range missing {
		c.cache.Add(t, vectors[j])
		for _, i := range missIdx[t] {
			out[i] = vectors[j]
		}
	}
	return out, nil
}
