package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
)

const sampleYAML = `
tasks:
  - stage: Signup
    description: Creating an account and confirming the email address.
    examples:
      - "I never got the confirmation email"
      - "The signup form keeps rejecting my card"
  - stage: Billing
    description: Payments, charges and invoices.
    examples:
      - "I was charged twice this month"
`

func TestParsePreservesOrderAndLookup(t *testing.T) {
	t.Parallel()

	tax, err := Parse([]byte(sampleYAML), "inline")
	require.NoError(t, err)

	assert.Equal(t, []string{"Signup", "Billing"}, tax.Names())
	assert.Equal(t, 2, tax.Len())

	st, ok := tax.Lookup("Billing")
	require.True(t, ok)
	assert.Equal(t, "Payments, charges and invoices.", st.Description)
	assert.Equal(t, []string{"I was charged twice this month"}, st.Examples)

	_, ok = tax.Lookup("billing")
	assert.False(t, ok, "lookup must be case-sensitive")
	_, ok = tax.Lookup("Bill")
	assert.False(t, ok, "lookup must not match prefixes")
}

func TestParseAcceptsJSON(t *testing.T) {
	t.Parallel()

	raw := `{"tasks":[{"stage":"Playback","description":"Streaming quality","examples":["buffering all the time"]}]}`
	tax, err := Parse([]byte(raw), "inline.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"Playback"}, tax.Names())
}

func TestParseRejectsBrokenDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "malformed", raw: "tasks: [unclosed"},
		{name: "empty document", raw: ""},
		{name: "zero stages", raw: "tasks: []"},
		{name: "empty name", raw: "tasks:\n  - stage: \"\"\n    examples: [a]"},
		{name: "blank name", raw: "tasks:\n  - stage: \"   \"\n    examples: [a]"},
		{name: "padded name", raw: "tasks:\n  - stage: \" Billing\"\n    examples: [a]"},
		{name: "duplicate", raw: "tasks:\n  - stage: Billing\n    examples: [a]\n  - stage: Billing\n    examples: [b]"},
		{name: "reserved sentinel", raw: "tasks:\n  - stage: Unknown\n    examples: [a]"},
		{name: "no examples", raw: "tasks:\n  - stage: Billing\n    examples: []"},
		{name: "empty example", raw: "tasks:\n  - stage: Billing\n    examples: [\"\"]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw), "inline")
			require.Error(t, err)

			var cfgErr *domain.ConfigError
			require.True(t, errors.As(err, &cfgErr), "want ConfigError, got %T", err)
			assert.Equal(t, "inline", cfgErr.Source)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	tax, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tax.Len())
}

func TestStagesReturnsCopy(t *testing.T) {
	t.Parallel()

	tax, err := Parse([]byte(sampleYAML), "inline")
	require.NoError(t, err)

	stages := tax.Stages()
	stages[0].Name = "Mutated"
	stages[0].Examples[0] = "mutated"

	st, ok := tax.Lookup("Signup")
	require.True(t, ok)
	assert.Equal(t, "I never got the confirmation email", st.Examples[0])
	assert.Equal(t, "Signup", tax.Names()[0])
}
