package storage

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
)

func sampleEnriched() []domain.EnrichedPost {
	return []domain.EnrichedPost{
		{
			Post:           domain.Post{ID: "a1", Title: "Charged twice", SelfText: "billing <error> & more", Subreddit: "netflix", Score: 3, CreatedUTC: 1700000000.5, SearchKeyword: "billing"},
			JourneyStage:   "Billing",
			Sentiment:      -0.6,
			FullText:       "Charged twice billing <error> & more",
			Classification: domain.ClassificationResult{Stage: "Billing", RawResponse: "Billing", Success: true},
		},
		{
			Post:           domain.Post{ID: "b2", Title: "Where is it", Subreddit: "cordcutters"},
			JourneyStage:   domain.UnknownStage,
			FullText:       "Where is it",
			Classification: domain.ClassificationResult{Stage: domain.UnknownStage, RawResponse: "maybe discovery", Failure: domain.FailureLabelMismatch},
		},
	}
}

func TestJSONFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "classified.json")
	file := NewJSONFile(path)
	require.NoError(t, file.WriteEnriched(context.Background(), sampleEnriched()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"id\": \"a1\""))
	assert.Contains(t, text, `"selftext": "billing <error> & more"`)
	assert.Contains(t, text, `"journey_stage": "Unknown"`)
	assert.Contains(t, text, `"failure": "label_mismatch"`)

	loaded, err := file.LoadEnriched(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Billing", loaded[0].JourneyStage)
	assert.Equal(t, -0.6, loaded[0].Sentiment)
	assert.Equal(t, 1700000000.5, loaded[0].CreatedUTC)

	require.NoError(t, file.WriteEnriched(context.Background(), loaded))
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, text, string(again))
}

func TestJSONFileLoadPosts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"id":"x","title":"Buffering","selftext":"all day","subreddit":"netflix","score":5,"num_comments":2,"created_utc":1699999999.0,"search_keyword":"buffering","upvote_ratio":0.9,"is_self":true}
]`), 0o644))

	posts, err := NewJSONFile(path).LoadPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Buffering all day", posts[0].FullText())
	assert.Equal(t, 0.9, posts[0].UpvoteRatio)
	assert.True(t, posts[0].IsSelf)
}

func TestJSONFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewJSONFile(filepath.Join(dir, "missing.json")).LoadPosts(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0o644))
	_, err = NewJSONFile(bad).LoadEnriched(context.Background())
	assert.ErrorContains(t, err, "decode")
}

func TestCSVFileWritesHeaderAndRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "classified.csv")
	require.NoError(t, NewCSVFile(path).WriteEnriched(context.Background(), sampleEnriched()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "a1", rows[1][0])
	assert.Equal(t, "Billing", rows[1][16])
	assert.Equal(t, "-0.6", rows[1][17])
	assert.Equal(t, "label_mismatch", rows[2][19])
}

func TestPostgresUpsertQuery(t *testing.T) {
	t.Parallel()

	builder, err := upsertQuery(sampleEnriched())
	require.NoError(t, err)
	query, args, err := builder.ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(query, "INSERT INTO enriched_posts (id,subreddit,search_keyword,created_utc,journey_stage,sentiment,full_text,classification_success,classification_failure,payload) VALUES ($1,$2,"))
	assert.Contains(t, query, "$20")
	assert.Contains(t, query, "ON CONFLICT (id) DO UPDATE")
	require.Len(t, args, 20)
	assert.Equal(t, "a1", args[0])
	assert.Equal(t, "Billing", args[4])
	assert.Equal(t, true, args[7])
	assert.Contains(t, args[9], `"journey_stage":"Billing"`)
}

func TestPostgresUpsertQueryRejectsUnencodablePost(t *testing.T) {
	t.Parallel()

	posts := sampleEnriched()
	posts[0].Sentiment = math.NaN()
	_, err := upsertQuery(posts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode a1")
}

func TestPostgresLoadQuery(t *testing.T) {
	t.Parallel()

	query, args, err := loadQuery().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT payload FROM enriched_posts ORDER BY seq", query)
	assert.Empty(t, args)
}

func TestLastByIDKeepsFirstPosition(t *testing.T) {
	t.Parallel()

	posts := []domain.EnrichedPost{
		{Post: domain.Post{ID: "a"}, JourneyStage: "Signup"},
		{Post: domain.Post{ID: "b"}},
		{Post: domain.Post{ID: "a"}, JourneyStage: "Billing"},
	}
	got := lastByID(posts)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "Billing", got[0].JourneyStage)
}

func TestSQLiteRepositoryUpsertAndOrder(t *testing.T) {
	t.Parallel()

	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "radar.db"))
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	require.NoError(t, repo.SaveEnriched(ctx, sampleEnriched()))

	updated := sampleEnriched()[0]
	updated.JourneyStage = "Signup"
	extra := domain.EnrichedPost{Post: domain.Post{ID: "c3"}, JourneyStage: "Playback", FullText: "buffering"}
	require.NoError(t, repo.SaveEnriched(ctx, []domain.EnrichedPost{extra, updated}))

	loaded, err := repo.LoadEnriched(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, []string{"a1", "b2", "c3"}, []string{loaded[0].ID, loaded[1].ID, loaded[2].ID})
	assert.Equal(t, "Signup", loaded[0].JourneyStage)
	assert.Equal(t, domain.FailureLabelMismatch, loaded[1].Classification.Failure)
}
