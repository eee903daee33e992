package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/keyphrase"
)

// NegativeSentimentCeiling is the score at or below which a post counts as a pain point.
const NegativeSentimentCeiling = -0.2

// DefaultMinTextLength drops posts whose full text has this many characters or fewer.
const DefaultMinTextLength = 20

// NoPainPointsMessage is surfaced when no post matches a query.
const NoPainPointsMessage = "No negative posts found for this stage."

// Query selects posts of one stage and bounds the keyphrase extraction.
type Query struct {
	Stage            string
	SentimentCeiling float64
	MinTextLength    int
	Phrases          keyphrase.Options
}

// DefaultQuery returns the dashboard defaults for stage.
func DefaultQuery(stage string) Query {
	return Query{
		Stage:            stage,
		SentimentCeiling: NegativeSentimentCeiling,
		MinTextLength:    DefaultMinTextLength,
		Phrases:          keyphrase.DefaultOptions(),
	}
}

// StageReport is what the presentation layer renders for one stage.
type StageReport struct {
	Stage             string             `json:"stage"`
	NegativePostCount int                `json:"negative_post_count"`
	Keyphrases        []domain.Keyphrase `json:"keyphrases"`
	Message           string             `json:"message,omitempty"`
}

// StageCount summarises one stage of a corpus.
type StageCount struct {
	Stage    string `json:"stage"`
	Total    int    `json:"total"`
	Negative int    `json:"negative"`
}

// PainPointAggregator turns an enriched corpus into ranked pain-point phrases.
// It only reads the corpus.
type PainPointAggregator struct {
	extractor *keyphrase.Extractor
	logger    *slog.Logger
}

// NewPainPointAggregator wires the keyphrase extractor.
func NewPainPointAggregator(extractor *keyphrase.Extractor, logger *slog.Logger) *PainPointAggregator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PainPointAggregator{extractor: extractor, logger: logger}
}

// Select returns the posts matching q, in corpus order.
func Select(corpus []domain.EnrichedPost, q Query) []domain.EnrichedPost {
	var out []domain.EnrichedPost
	for _, p := range corpus {
		if p.JourneyStage == q.Stage &&
			p.Sentiment <= q.SentimentCeiling &&
			utf8.RuneCountInString(p.FullText) > q.MinTextLength {
			out = append(out, p)
		}
	}
	return out
}

// ExtractPainPoints ranks the keyphrases of the posts selected by q.
// An empty selection yields an empty slice and no error.
func (a *PainPointAggregator) ExtractPainPoints(ctx context.Context, corpus []domain.EnrichedPost, q Query) ([]domain.Keyphrase, error) {
	report, err := a.Report(ctx, corpus, q)
	if err != nil {
		return nil, err
	}
	return report.Keyphrases, nil
}

// Report is ExtractPainPoints plus the number of matching posts.
func (a *PainPointAggregator) Report(ctx context.Context, corpus []domain.EnrichedPost, q Query) (StageReport, error) {
	if err := q.Phrases.Validate(); err != nil {
		return StageReport{}, err
	}
	if q.MinTextLength < 0 {
		return StageReport{}, fmt.Errorf("%w: negative minimum text length %d", domain.ErrInvalidQuery, q.MinTextLength)
	}

	selected := Select(corpus, q)
	report := StageReport{Stage: q.Stage, NegativePostCount: len(selected), Keyphrases: []domain.Keyphrase{}}
	if len(selected) == 0 {
		report.Message = NoPainPointsMessage
		return report, nil
	}

	texts := make([]string, len(selected))
	for i, p := range selected {
		texts[i] = p.FullText
	}

	phrases, err := a.extractor.Extract(ctx, strings.Join(texts, " "), q.Phrases)
	if err != nil {
		return StageReport{}, fmt.Errorf("extract pain points for %s: %w", q.Stage, err)
	}
	report.Keyphrases = phrases

	a.logger.Debug("pain points extracted", "stage", q.Stage, "posts", len(selected), "phrases", len(phrases))
	return report, nil
}

// Stages lists the distinct stage labels of a corpus, sorted.
func Stages(corpus []domain.EnrichedPost) []string {
	set := make(map[string]struct{})
	for _, p := range corpus {
		set[p.JourneyStage] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// CountStages returns per-stage totals and negative counts, sorted by stage name.
func CountStages(corpus []domain.EnrichedPost, ceiling float64) []StageCount {
	idx := make(map[string]int)
	var counts []StageCount
	for _, p := range corpus {
		i, ok := idx[p.JourneyStage]
		if !ok {
			i = len(counts)
			idx[p.JourneyStage] = i
			counts = append(counts, StageCount{Stage: p.JourneyStage})
		}
		counts[i].Total++
		if p.Sentiment <= ceiling {
			counts[i].Negative++
		}
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Stage < counts[j].Stage })
	return counts
}
