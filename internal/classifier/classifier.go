// Package classifier maps free-form posts onto taxonomy stages using an oracle.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/taxonomy"
)

// Classifier asks the oracle for a stage and validates the answer against the taxonomy.
// Any failure is local to one post and yields domain.UnknownStage.
type Classifier struct {
	oracle      ports.Oracle
	logger      *slog.Logger
	concurrency int
}

// Option customises a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for per-post failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// WithConcurrency bounds the number of in-flight oracle calls in ClassifyAll.
// Values below 1 mean sequential processing.
func WithConcurrency(n int) Option {
	return func(c *Classifier) {
		if n < 1 {
			n = 1
		}
		c.concurrency = n
	}
}

// New wires a classifier around an oracle.
func New(oracle ports.Oracle, opts ...Option) *Classifier {
	c := &Classifier{oracle: oracle, concurrency: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify assigns one text to a stage. It never returns an error: failures are
// reported through the result's Failure and Err fields.
func (c *Classifier) Classify(ctx context.Context, tax *taxonomy.Taxonomy, text string) domain.ClassificationResult {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Unknown(domain.FailureEmptyText, "", domain.ErrEmptyText)
	}
	if err := ctx.Err(); err != nil {
		return domain.Unknown(domain.FailureCancelled, "", err)
	}
	if c.oracle == nil {
		return domain.Unknown(domain.FailureOracleUnavailable, "", fmt.Errorf("%w: no oracle configured", domain.ErrOracleUnavailable))
	}

	prompt, err := taxonomy.BuildPrompt(text, tax)
	if err != nil {
		return domain.Unknown(domain.FailureOracleUnavailable, "", fmt.Errorf("build prompt: %w", err))
	}

	raw, err := c.oracle.Complete(ctx, prompt)
	if err != nil {
		return domain.Unknown(failureKind(ctx, err), raw, err)
	}

	label := strings.TrimSpace(raw)
	if _, ok := tax.Lookup(label); !ok {
		return domain.Unknown(domain.FailureLabelMismatch, raw, fmt.Errorf("%w: %q", domain.ErrLabelMismatch, label))
	}

	return domain.ClassificationResult{
		Stage:       label,
		RawResponse: raw,
		Success:     true,
	}
}

// ClassifyAll classifies texts and returns exactly one result per input, in input order.
// Once ctx is cancelled, texts that have not started are marked cancelled; results
// already produced are kept.
func (c *Classifier) ClassifyAll(ctx context.Context, tax *taxonomy.Taxonomy, texts []string) []domain.ClassificationResult {
	results := make([]domain.ClassificationResult, len(texts))

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(texts); j++ {
				results[j] = domain.Unknown(domain.FailureCancelled, "", err)
			}
			break
		}

		g.Go(func() error {
			res := c.Classify(ctx, tax, text)
			if !res.Success {
				c.warn("post not classified", "post_index", i, "failure", res.Failure, "error", res.Err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func failureKind(ctx context.Context, err error) domain.FailureKind {
	switch {
	case ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return domain.FailureCancelled
	case errors.Is(err, domain.ErrOracleRateLimited):
		return domain.FailureOracleRateLimited
	default:
		return domain.FailureOracleUnavailable
	}
}

func (c *Classifier) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
