// Package embedding provides ports.Embedder implementations.
package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/keyphrase"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// DefaultDimensions is the vector size of the hashing embedder.
const DefaultDimensions = 512

// Hashing embeds texts by feature hashing their tokens and token bigrams into a
// fixed-size, L2-normalised vector. It is deterministic and needs no model.
type Hashing struct {
	dims int
}

var _ ports.Embedder = (*Hashing)(nil)

// NewHashing returns an embedder producing vectors of dims components.
func NewHashing(dims int) *Hashing {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Hashing{dims: dims}
}

func (h *Hashing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *Hashing) vector(text string) []float32 {
	v := make([]float64, h.dims)
	tokens := keyphrase.Tokenize(text)
	for i, tok := range tokens {
		h.add(v, tok, 1)
		if i > 0 {
			h.add(v, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	out := make([]float32, h.dims)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}

func (h *Hashing) add(v []float64, feature string, weight float64) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	idx := int(sum % uint64(h.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	v[idx] += weight
}
