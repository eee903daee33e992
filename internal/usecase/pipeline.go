package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/taxonomy"
)

// PipelineDeps wires all driven adapters into the batch pipeline.
type PipelineDeps struct {
	Source     ports.PostSource
	Sinks      []ports.EnrichedSink
	Repository ports.EnrichedRepository
	Notifier   ports.Notifier
	Enricher   *Enricher
	Aggregator *PainPointAggregator
	Logger     *slog.Logger
	// Query holds the analysis bounds for stage counts and the digest. Zero means DefaultQuery.
	Query Query
	// DigestTopK bounds the phrases listed per stage in the notifier digest.
	DigestTopK int
}

// Pipeline runs one classification batch: load, enrich, persist, notify.
type Pipeline struct {
	source     ports.PostSource
	sinks      []ports.EnrichedSink
	repository ports.EnrichedRepository
	notifier   ports.Notifier
	enricher   *Enricher
	aggregator *PainPointAggregator
	logger     *slog.Logger
	query      Query
	digestTopK int
}

// RunSummary describes a finished run.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	Posts      int            `json:"posts"`
	Classified int            `json:"classified"`
	Stages     []StageCount   `json:"stages"`
	Failures   map[string]int `json:"failures,omitempty"`
	Cancelled  bool           `json:"cancelled,omitempty"`
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	topK := deps.DigestTopK
	if topK <= 0 {
		topK = 5
	}
	query := deps.Query
	if query == (Query{}) {
		query = DefaultQuery("")
	}
	return &Pipeline{
		source:     deps.Source,
		sinks:      deps.Sinks,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		enricher:   deps.Enricher,
		aggregator: deps.Aggregator,
		logger:     logger,
		query:      query,
		digestTopK: topK,
	}
}

// Run classifies every post from the source. If ctx is cancelled mid-batch the
// posts finished so far are still persisted and ctx.Err() is returned.
func (p *Pipeline) Run(ctx context.Context, tax *taxonomy.Taxonomy) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", summary.RunID)

	if p.source == nil || p.enricher == nil {
		return summary, fmt.Errorf("pipeline misconfigured")
	}

	posts, err := p.source.LoadPosts(ctx)
	if err != nil {
		return summary, fmt.Errorf("load posts: %w", err)
	}
	logger.Info("posts loaded", "count", len(posts))

	enriched, runErr := p.enricher.Enrich(ctx, posts, tax)
	if runErr != nil && enriched == nil {
		return summary, fmt.Errorf("enrich posts: %w", runErr)
	}
	if runErr != nil {
		summary.Cancelled = errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)
		logger.Warn("run interrupted, persisting partial results", "error", runErr)
	}

	summary.Posts = len(enriched)
	summary.Stages = CountStages(enriched, p.query.SentimentCeiling)
	for _, e := range enriched {
		if e.Classification.Success {
			summary.Classified++
			continue
		}
		if summary.Failures == nil {
			summary.Failures = map[string]int{}
		}
		summary.Failures[string(e.Classification.Failure)]++
	}

	// persistence runs even after cancellation so completed work is kept
	persistCtx := context.WithoutCancel(ctx)
	for _, sink := range p.sinks {
		if err := sink.WriteEnriched(persistCtx, enriched); err != nil {
			return summary, fmt.Errorf("write enriched: %w", err)
		}
	}
	if p.repository != nil {
		if err := p.repository.SaveEnriched(persistCtx, enriched); err != nil {
			return summary, fmt.Errorf("save enriched: %w", err)
		}
	}

	logger.Info("run finished",
		"posts", summary.Posts,
		"classified", summary.Classified,
		"failures", summary.Failures,
	)

	if runErr != nil {
		return summary, runErr
	}

	if p.notifier == nil || p.aggregator == nil || len(enriched) == 0 {
		return summary, nil
	}

	digest, err := p.buildDigest(ctx, tax, enriched)
	if err != nil {
		return summary, fmt.Errorf("build digest: %w", err)
	}
	if err := p.notifier.PublishDigest(ctx, digest); err != nil {
		return summary, fmt.Errorf("publish digest: %w", err)
	}
	return summary, nil
}

func (p *Pipeline) buildDigest(ctx context.Context, tax *taxonomy.Taxonomy, corpus []domain.EnrichedPost) (string, error) {
	var b strings.Builder
	b.WriteString("*Customer journey pain points*\n")

	for _, stage := range tax.Names() {
		q := p.query
		q.Stage = stage
		q.Phrases.TopK = p.digestTopK
		report, err := p.aggregator.Report(ctx, corpus, q)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n*%s* (%d negative posts)\n", stage, report.NegativePostCount)
		if len(report.Keyphrases) == 0 {
			b.WriteString("- none\n")
			continue
		}
		for _, kp := range report.Keyphrases {
			fmt.Fprintf(&b, "- %s (%.2f)\n", kp.Phrase, kp.Relevance)
		}
	}

	return b.String(), nil
}
