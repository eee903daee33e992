package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/classifier"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/taxonomy"
)

// Enricher attaches a journey stage and a sentiment score to every post.
type Enricher struct {
	classifier *classifier.Classifier
	sentiment  ports.SentimentScorer
	normalize  func(domain.Post) domain.Post
	logger     *slog.Logger
}

// EnricherOption customises an Enricher.
type EnricherOption func(*Enricher)

// WithTextNormalizer cleans a copy of each post before its derived texts are
// built. The stored post keeps the collector's title and body unchanged.
func WithTextNormalizer(fn func(domain.Post) domain.Post) EnricherOption {
	return func(e *Enricher) { e.normalize = fn }
}

// NewEnricher wires the classifier and the sentiment scorer.
func NewEnricher(c *classifier.Classifier, s ports.SentimentScorer, logger *slog.Logger, opts ...EnricherOption) *Enricher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Enricher{classifier: c, sentiment: s, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns one EnrichedPost per input post, in input order.
// It fails only when the taxonomy is empty or a post has no id. When ctx is
// cancelled the full slice is still returned, with unfinished posts marked
// Unknown, together with ctx.Err().
func (e *Enricher) Enrich(ctx context.Context, posts []domain.Post, tax *taxonomy.Taxonomy) ([]domain.EnrichedPost, error) {
	if tax.Len() == 0 {
		return nil, &domain.ConfigError{Reason: "taxonomy has no stages"}
	}
	if e.classifier == nil || e.sentiment == nil {
		return nil, fmt.Errorf("enricher misconfigured")
	}
	for i, p := range posts {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: post %d has no id", domain.ErrInvalidPost, i)
		}
	}

	texts := make([]string, len(posts))
	fulls := make([]string, len(posts))
	empty := 0
	for i, p := range posts {
		clean := p
		if e.normalize != nil {
			clean = e.normalize(p)
		}
		texts[i] = clean.ClassificationText()
		fulls[i] = clean.FullText()
		if fulls[i] == "" {
			empty++
		}
	}
	if empty > 0 {
		e.logger.Warn("posts without text", "count", empty)
	}
	results := e.classifier.ClassifyAll(ctx, tax, texts)

	enriched := make([]domain.EnrichedPost, len(posts))
	for i, p := range posts {
		enriched[i] = domain.EnrichedPost{
			Post:           p,
			JourneyStage:   results[i].Stage,
			Sentiment:      e.sentiment.Score(fulls[i]),
			FullText:       fulls[i],
			Classification: results[i],
		}
	}

	e.logger.Info("posts enriched", "count", len(enriched))
	return enriched, ctx.Err()
}
