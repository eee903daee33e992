package ports

import (
	"context"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
)

// Oracle is a text-to-text completion service used to pick a journey stage.
// Implementations are pure transport: no retries, no interpretation of the reply.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder turns texts into dense vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// PhraseScorer rates each candidate phrase by its relevance to the document.
type PhraseScorer interface {
	ScorePhrases(ctx context.Context, document string, phrases []string) ([]float64, error)
}

// SentimentScorer returns a compound polarity in [-1, 1]. It must not fail.
type SentimentScorer interface {
	Score(text string) float64
}

// PostSource yields raw posts produced by the collector.
type PostSource interface {
	LoadPosts(ctx context.Context) ([]domain.Post, error)
}

// EnrichedSink persists a classified corpus.
type EnrichedSink interface {
	WriteEnriched(ctx context.Context, posts []domain.EnrichedPost) error
}

// CorpusSource yields a previously enriched corpus for aggregation.
type CorpusSource interface {
	LoadEnriched(ctx context.Context) ([]domain.EnrichedPost, error)
}

// EnrichedRepository stores enriched posts keyed by post id.
type EnrichedRepository interface {
	CorpusSource
	SaveEnriched(ctx context.Context, posts []domain.EnrichedPost) error
}

// Notifier streams pain-point digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}
