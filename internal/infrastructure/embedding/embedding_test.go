package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/keyphrase"
)

func TestHashingIsDeterministicAndNormalised(t *testing.T) {
	t.Parallel()

	h := NewHashing(64)
	vecs, err := h.Embed(context.Background(), []string{"charged twice", "charged twice", ""})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, vecs[0], vecs[1])
	assert.InDelta(t, 1.0, keyphrase.Cosine(vecs[0], vecs[0]), 1e-6)
	assert.Len(t, vecs[2], 64)
	assert.Zero(t, keyphrase.Cosine(vecs[2], vecs[0]))
}

func TestHashingRanksOverlapHigher(t *testing.T) {
	t.Parallel()

	vecs, err := NewHashing(0).Embed(context.Background(), []string{
		"charged twice billing error card",
		"billing error",
		"remote",
	})
	require.NoError(t, err)
	assert.Greater(t, keyphrase.Cosine(vecs[0], vecs[1]), keyphrase.Cosine(vecs[0], vecs[2]))
}

type countingEmbedder struct {
	batches [][]string
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.batches = append(c.batches, append([]string(nil), texts...))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func TestCachedOnlyForwardsMisses(t *testing.T) {
	t.Parallel()

	inner := &countingEmbedder{}
	cached, err := NewCached(inner, 10)
	require.NoError(t, err)

	first, err := cached.Embed(context.Background(), []string{"a", "bb", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}, {1}}, first)

	second, err := cached.Embed(context.Background(), []string{"bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2}, {3}}, second)

	assert.Equal(t, [][]string{{"a", "bb"}, {"ccc"}}, inner.batches)
}

func TestOllamaEmbed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nomic-embed-text", body["model"])
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{float32(len(body["prompt"])), 1}})
	}))
	defer srv.Close()

	vecs, err := NewOllama(srv.URL, "nomic-embed-text").Embed(context.Background(), []string{"ab", "abcd"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2, 1}, {4, 1}}, vecs)
}

func TestOllamaEmbedFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewOllama(srv.URL, "m").Embed(context.Background(), []string{"x"})
	assert.ErrorContains(t, err, "unexpected status")
}
