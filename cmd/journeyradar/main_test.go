package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/usecase"
)

func TestPrintReports(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printReports(&buf, []usecase.StageReport{
		{Stage: "Billing", NegativePostCount: 2, Keyphrases: []domain.Keyphrase{{Phrase: "charged twice", Relevance: 0.81234}}},
		{Stage: "Playback", Keyphrases: []domain.Keyphrase{}, Message: usecase.NoPainPointsMessage},
	}))

	out := buf.String()
	assert.Contains(t, out, "== Billing: 2 negative posts")
	assert.Contains(t, out, "charged twice")
	assert.Contains(t, out, "0.8123")
	assert.Contains(t, out, "== Playback: 0 negative posts")
	assert.Contains(t, out, usecase.NoPainPointsMessage)
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JOURNEY_RADAR_CONFIG", filepath.Join(dir, "absent.yaml"))
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("EMBEDDING_PROVIDER", "")

	assert.Equal(t, 2, run(nil))
	assert.Equal(t, 2, run([]string{"bogus"}))
	assert.Equal(t, 1, run([]string{"report", "-in", filepath.Join(dir, "missing.json")}))
	assert.Equal(t, 1, run([]string{"classify", "-no-such-flag"}))
}
