package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

const enrichedTable = "enriched_posts"

// upsertBatchSize keeps statements well below the Postgres bind parameter limit.
const upsertBatchSize = 500

const postgresSchema = `CREATE TABLE IF NOT EXISTS enriched_posts (
    seq                    BIGSERIAL,
    id                     TEXT PRIMARY KEY,
    subreddit              TEXT NOT NULL DEFAULT '',
    search_keyword         TEXT NOT NULL DEFAULT '',
    created_utc            DOUBLE PRECISION NOT NULL DEFAULT 0,
    journey_stage          TEXT NOT NULL,
    sentiment              DOUBLE PRECISION NOT NULL,
    full_text              TEXT NOT NULL,
    classification_success BOOLEAN NOT NULL,
    classification_failure TEXT NOT NULL DEFAULT '',
    payload                JSONB NOT NULL,
    updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS enriched_posts_stage_idx ON enriched_posts (journey_stage, sentiment);`

var enrichedColumns = []string{
	"id", "subreddit", "search_keyword", "created_utc", "journey_stage",
	"sentiment", "full_text", "classification_success", "classification_failure", "payload",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists enriched posts into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.EnrichedRepository = (*PostgresRepository)(nil)

// OpenPostgres opens a pgx-backed sql.DB and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the table and index when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveEnriched upserts posts by id inside one transaction.
func (r *PostgresRepository) SaveEnriched(ctx context.Context, posts []domain.EnrichedPost) error {
	if r.db == nil || len(posts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	unique := lastByID(posts)
	for start := 0; start < len(unique); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(unique))
		builder, err := upsertQuery(unique[start:end])
		if err != nil {
			return err
		}
		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert enriched: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadEnriched returns every stored post in first-insertion order.
func (r *PostgresRepository) LoadEnriched(ctx context.Context) ([]domain.EnrichedPost, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := loadQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query enriched: %w", err)
	}

	var result []domain.EnrichedPost
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan payload: %w", err)
		}
		var post domain.EnrichedPost
		if err := json.Unmarshal(payload, &post); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		result = append(result, post)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

func upsertQuery(posts []domain.EnrichedPost) (sq.InsertBuilder, error) {
	q := psql.Insert(enrichedTable).Columns(enrichedColumns...)
	for _, p := range posts {
		payload, err := json.Marshal(p)
		if err != nil {
			return q, fmt.Errorf("encode %s: %w", p.ID, err)
		}
		q = q.Values(
			p.ID,
			p.Subreddit,
			p.SearchKeyword,
			p.CreatedUTC,
			p.JourneyStage,
			p.Sentiment,
			p.FullText,
			p.Classification.Success,
			string(p.Classification.Failure),
			string(payload),
		)
	}
	return q.Suffix(`ON CONFLICT (id) DO UPDATE
              SET subreddit = EXCLUDED.subreddit,
                  search_keyword = EXCLUDED.search_keyword,
                  created_utc = EXCLUDED.created_utc,
                  journey_stage = EXCLUDED.journey_stage,
                  sentiment = EXCLUDED.sentiment,
                  full_text = EXCLUDED.full_text,
                  classification_success = EXCLUDED.classification_success,
                  classification_failure = EXCLUDED.classification_failure,
                  payload = EXCLUDED.payload,
                  updated_at = NOW()`), nil
}

func loadQuery() sq.SelectBuilder {
	return psql.Select("payload").From(enrichedTable).OrderBy("seq")
}

// lastByID keeps the last occurrence of each id at the position of its first one.
func lastByID(posts []domain.EnrichedPost) []domain.EnrichedPost {
	idx := make(map[string]int, len(posts))
	out := make([]domain.EnrichedPost, 0, len(posts))
	for _, p := range posts {
		if i, ok := idx[p.ID]; ok {
			out[i] = p
			continue
		}
		idx[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}
