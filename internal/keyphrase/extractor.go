package keyphrase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// Options bounds one extraction.
type Options struct {
	TopK     int
	MinNGram int
	MaxNGram int
}

// DefaultOptions mirrors the dashboard defaults: ten phrases of one to three tokens.
func DefaultOptions() Options {
	return Options{TopK: 10, MinNGram: 1, MaxNGram: 3}
}

// Validate rejects option sets that cannot produce phrases.
func (o Options) Validate() error {
	switch {
	case o.TopK <= 0:
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidQuery, o.TopK)
	case o.MinNGram < 1 || o.MaxNGram < o.MinNGram:
		return fmt.Errorf("%w: n-gram range (%d, %d)", domain.ErrInvalidQuery, o.MinNGram, o.MaxNGram)
	}
	return nil
}

// Extractor ranks candidate phrases of a document with a PhraseScorer.
type Extractor struct {
	scorer ports.PhraseScorer
	stop   map[string]struct{}
}

// NewExtractor builds an extractor with the English stop-word list.
func NewExtractor(scorer ports.PhraseScorer) *Extractor {
	return &Extractor{scorer: scorer, stop: EnglishStopWords()}
}

// Extract returns at most opts.TopK distinct phrases, by descending relevance.
// Ties keep first-seen order. A document with no candidates yields an empty slice.
func (e *Extractor) Extract(ctx context.Context, document string, opts Options) ([]domain.Keyphrase, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(document) == "" {
		return []domain.Keyphrase{}, nil
	}

	candidates := Candidates(document, opts.MinNGram, opts.MaxNGram, e.stop)
	if len(candidates) == 0 {
		return []domain.Keyphrase{}, nil
	}
	if e.scorer == nil {
		return nil, fmt.Errorf("keyphrase extractor has no scorer")
	}

	scores, err := e.scorer.ScorePhrases(ctx, document, candidates)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("score candidates: got %d scores for %d phrases", len(scores), len(candidates))
	}

	ranked := make([]domain.Keyphrase, len(candidates))
	for i, phrase := range candidates {
		ranked[i] = domain.Keyphrase{Phrase: phrase, Relevance: round4(scores[i])}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})

	if len(ranked) > opts.TopK {
		ranked = ranked[:opts.TopK]
	}
	return ranked, nil
}

func round4(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*1e4) / 1e4
}
