package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/classifier"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/config"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/infrastructure/embedding"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/infrastructure/httpapi"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/infrastructure/llm"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/infrastructure/ml"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/infrastructure/parser"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/infrastructure/scheduler"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/infrastructure/storage"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/infrastructure/telegram"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/keyphrase"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/sentiment"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/taxonomy"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	registry   *llm.Registry
	aggregator *usecase.PainPointAggregator
	repository ports.EnrichedRepository
	closers    []func() error
}

// New builds the shared components. Oracle and taxonomy are resolved per classify run.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = slog.New(slog.DiscardHandler)
	}
	a := &Application{cfg: cfg, logger: baseLogger, registry: llm.DefaultRegistry()}

	embedder, err := newEmbedder(ctx, cfg.Embedding)
	if err != nil {
		return nil, err
	}
	extractor := keyphrase.NewExtractor(keyphrase.NewEmbeddingScorer(embedder))
	a.aggregator = usecase.NewPainPointAggregator(extractor, baseLogger.With("component", "aggregator"))

	if err := a.openRepository(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Close releases database handles.
func (a *Application) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// ClassifyOptions overrides the configured file locations.
type ClassifyOptions struct {
	Input  string
	Output string
	CSV    string
	Every  time.Duration
}

// Classify runs the enrichment pipeline once, or on every interval when opts.Every is set.
// A broken taxonomy aborts before any post is classified.
func (a *Application) Classify(ctx context.Context, opts ClassifyOptions) error {
	tax, err := taxonomy.Load(a.cfg.Taxonomy.Path)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}
	a.logger.Info("taxonomy loaded", "path", a.cfg.Taxonomy.Path, "stages", tax.Len())

	oracle, err := a.registry.Build(ctx, a.cfg.Oracle)
	if err != nil {
		return fmt.Errorf("configure oracle: %w", err)
	}
	if c, ok := oracle.(interface{ Close() error }); ok {
		defer c.Close()
	}
	a.logger.Info("oracle ready", "oracle", a.cfg.Oracle.String())

	pipeline := a.newPipeline(oracle, opts)
	job := func(ctx context.Context, _ time.Time) error {
		summary, err := pipeline.Run(ctx, tax)
		a.logger.Info("classification summary",
			"run_id", summary.RunID,
			"posts", summary.Posts,
			"classified", summary.Classified,
			"cancelled", summary.Cancelled,
		)
		return err
	}

	return scheduler.NewInterval(opts.Every).Run(ctx, job, func(err error) {
		a.logger.Error("classification run failed", "error", err)
	})
}

func (a *Application) newPipeline(oracle ports.Oracle, opts ClassifyOptions) *usecase.Pipeline {
	input := orDefault(opts.Input, a.cfg.Storage.Input)
	output := orDefault(opts.Output, a.cfg.Storage.Output)
	csvPath := orDefault(opts.CSV, a.cfg.Storage.CSVOutput)

	sinks := []ports.EnrichedSink{storage.NewJSONFile(output)}
	if csvPath != "" {
		sinks = append(sinks, storage.NewCSVFile(csvPath))
	}

	var notifier ports.Notifier
	if tg := a.cfg.Notifications.Telegram; tg.Enabled() {
		notifier = telegram.NewNotifier(tg.BaseURL, tg.BotToken, tg.ChatID)
	}

	cls := classifier.New(oracle,
		classifier.WithLogger(a.logger.With("component", "classifier")),
		classifier.WithConcurrency(a.cfg.Oracle.Concurrency),
	)
	enricher := usecase.NewEnricher(cls, sentiment.NewAnalyzer(), a.logger.With("component", "enricher"),
		usecase.WithTextNormalizer(parser.NormalizePost),
	)

	return usecase.NewPipeline(usecase.PipelineDeps{
		Source:     storage.NewJSONFile(input),
		Sinks:      sinks,
		Repository: a.repository,
		Notifier:   notifier,
		Enricher:   enricher,
		Aggregator: a.aggregator,
		Logger:     a.logger.With("component", "pipeline"),
		Query:      a.DefaultReportQuery(),
	})
}

// ReportOptions selects the corpus and query for a pain point report.
// An empty Stage reports every stage in the corpus.
type ReportOptions struct {
	Input string
	Stage string
	// Query carries ceiling, length and phrase bounds; Stage is filled per report.
	Query usecase.Query
}

// DefaultReportQuery builds the query from the analysis settings.
func (a *Application) DefaultReportQuery() usecase.Query {
	an := a.cfg.Analysis
	q := usecase.DefaultQuery("")
	q.SentimentCeiling = an.SentimentCeiling
	q.MinTextLength = an.MinTextLength
	q.Phrases = keyphrase.Options{TopK: an.TopK, MinNGram: an.MinNGram, MaxNGram: an.MaxNGram}
	return q
}

// Report computes one StageReport per requested stage.
func (a *Application) Report(ctx context.Context, opts ReportOptions) ([]usecase.StageReport, error) {
	corpus, err := a.corpusSource(opts.Input).LoadEnriched(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	stages := []string{opts.Stage}
	if opts.Stage == "" {
		stages = usecase.Stages(corpus)
	}

	reports := make([]usecase.StageReport, 0, len(stages))
	for _, stage := range stages {
		q := opts.Query
		q.Stage = stage
		report, err := a.aggregator.Report(ctx, corpus, q)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Serve exposes the corpus over HTTP until ctx is cancelled.
func (a *Application) Serve(ctx context.Context, input, addr string) error {
	srv := httpapi.NewServer(a.corpusSource(input), a.aggregator, a.DefaultReportQuery(), a.logger.With("component", "httpapi"))
	return srv.Run(ctx, orDefault(addr, a.cfg.Server.Addr))
}

func (a *Application) corpusSource(input string) ports.CorpusSource {
	if input == "" && a.repository != nil {
		return a.repository
	}
	return storage.NewJSONFile(orDefault(input, a.cfg.Storage.Output))
}

func (a *Application) openRepository(ctx context.Context) error {
	db := a.cfg.Storage.Database
	switch db.Driver {
	case "":
		return nil
	case "postgres":
		conn, err := storage.OpenPostgres(ctx, db.DSN)
		if err != nil {
			return err
		}
		repo := storage.NewPostgresRepository(conn)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = conn.Close()
			return err
		}
		a.repository = repo
		a.closers = append(a.closers, conn.Close)
	case "sqlite":
		repo, err := storage.OpenSQLite(db.DSN)
		if err != nil {
			return err
		}
		a.repository = repo
		a.closers = append(a.closers, repo.Close)
	default:
		return unsupported("storage.database.driver", db.Driver)
	}
	return nil
}

func newEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (ports.Embedder, error) {
	var base ports.Embedder
	switch cfg.Provider {
	case "", "hashing":
		return embedding.NewHashing(cfg.Dimensions), nil
	case "ml":
		base = ml.NewClient(cfg.Endpoint, cfg.APIKey)
	case "ollama":
		base = embedding.NewOllama(cfg.Endpoint, cfg.Model)
	case "gemini":
		g, err := embedding.NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.Dimensions)
		if err != nil {
			return nil, err
		}
		base = g
	default:
		return nil, unsupported("embedding.provider", cfg.Provider)
	}
	cached, err := embedding.NewCached(base, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func unsupported(field, value string) error {
	return &domain.ConfigError{Source: field, Reason: fmt.Sprintf("unsupported value %q", value)}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
