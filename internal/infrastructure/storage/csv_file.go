package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// csvHeader follows the collector's column order plus the enrichment columns.
var csvHeader = []string{
	"id", "title", "selftext", "author", "subreddit", "score", "upvote_ratio",
	"num_comments", "created_utc", "created_datetime", "url", "permalink",
	"is_self", "over_18", "search_keyword", "collected_at",
	"journey_stage", "sentiment", "full_text", "classification_failure",
}

// CSVFile exports an enriched corpus as CSV.
type CSVFile struct {
	path string
}

var _ ports.EnrichedSink = (*CSVFile)(nil)

// NewCSVFile binds the exporter to path.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

func (f *CSVFile) WriteEnriched(_ context.Context, posts []domain.EnrichedPost) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range posts {
		if err := w.Write(csvRecord(p)); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return writeAtomic(f.path, buf.Bytes())
}

func csvRecord(p domain.EnrichedPost) []string {
	return []string{
		p.ID,
		p.Title,
		p.SelfText,
		p.Author,
		p.Subreddit,
		strconv.Itoa(p.Score),
		strconv.FormatFloat(p.UpvoteRatio, 'f', -1, 64),
		strconv.Itoa(p.NumComments),
		strconv.FormatFloat(p.CreatedUTC, 'f', -1, 64),
		p.CreatedDatetime,
		p.URL,
		p.Permalink,
		strconv.FormatBool(p.IsSelf),
		strconv.FormatBool(p.Over18),
		p.SearchKeyword,
		p.CollectedAt,
		p.JourneyStage,
		strconv.FormatFloat(p.Sentiment, 'f', -1, 64),
		p.FullText,
		string(p.Classification.Failure),
	}
}
