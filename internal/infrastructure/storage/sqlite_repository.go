package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// enrichedRecord is the gorm model of one stored post.
type enrichedRecord struct {
	ID                    string `gorm:"primaryKey"`
	Seq                   int64  `gorm:"index"`
	Subreddit             string
	SearchKeyword         string
	CreatedUTC            float64
	JourneyStage          string  `gorm:"index:idx_stage_sentiment"`
	Sentiment             float64 `gorm:"index:idx_stage_sentiment"`
	FullText              string
	ClassificationSuccess bool
	ClassificationFailure string
	Payload               string
	UpdatedAt             time.Time
}

func (enrichedRecord) TableName() string { return enrichedTable }

// SQLiteRepository stores enriched posts in a local SQLite file through gorm.
type SQLiteRepository struct {
	db *gorm.DB
}

var _ ports.EnrichedRepository = (*SQLiteRepository)(nil)

// OpenSQLite opens (or creates) the database at path and migrates the schema.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&enrichedRecord{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying connection pool.
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveEnriched upserts posts by id. Posts seen before keep their position.
func (r *SQLiteRepository) SaveEnriched(ctx context.Context, posts []domain.EnrichedPost) error {
	if len(posts) == 0 {
		return nil
	}
	unique := lastByID(posts)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int64
		if err := tx.Model(&enrichedRecord{}).Select("COALESCE(MAX(seq), 0)").Scan(&next).Error; err != nil {
			return fmt.Errorf("read sequence: %w", err)
		}

		records := make([]enrichedRecord, len(unique))
		for i, p := range unique {
			payload, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode %s: %w", p.ID, err)
			}
			records[i] = enrichedRecord{
				ID:                    p.ID,
				Seq:                   next + int64(i) + 1,
				Subreddit:             p.Subreddit,
				SearchKeyword:         p.SearchKeyword,
				CreatedUTC:            p.CreatedUTC,
				JourneyStage:          p.JourneyStage,
				Sentiment:             p.Sentiment,
				FullText:              p.FullText,
				ClassificationSuccess: p.Classification.Success,
				ClassificationFailure: string(p.Classification.Failure),
				Payload:               string(payload),
			}
		}

		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"subreddit", "search_keyword", "created_utc", "journey_stage", "sentiment",
				"full_text", "classification_success", "classification_failure", "payload", "updated_at",
			}),
		}).CreateInBatches(records, 200).Error
		if err != nil {
			return fmt.Errorf("upsert enriched: %w", err)
		}
		return nil
	})
}

// LoadEnriched returns every stored post in first-insertion order.
func (r *SQLiteRepository) LoadEnriched(ctx context.Context) ([]domain.EnrichedPost, error) {
	var records []enrichedRecord
	if err := r.db.WithContext(ctx).Order("seq").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query enriched: %w", err)
	}

	out := make([]domain.EnrichedPost, 0, len(records))
	for _, rec := range records {
		var post domain.EnrichedPost
		if err := json.Unmarshal([]byte(rec.Payload), &post); err != nil {
			return nil, fmt.Errorf("decode %s: %w", rec.ID, err)
		}
		out = append(out, post)
	}
	return out, nil
}
