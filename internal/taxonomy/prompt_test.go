package taxonomy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
)

func TestBuildPromptEmbedsWholeTaxonomyInOrder(t *testing.T) {
	t.Parallel()

	tax, err := Parse([]byte(sampleYAML), "inline")
	require.NoError(t, err)

	prompt, err := BuildPrompt("Charged twice\n\nbilling error on my card", tax)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Respond with only the stage name.")
	assert.Contains(t, prompt, "\"\"\"Charged twice\n\nbilling error on my card\"\"\"")
	assert.Contains(t, prompt, "### Signup\nCreating an account and confirming the email address.\n    - I never got the confirmation email\n    - The signup form keeps rejecting my card")
	assert.Contains(t, prompt, "### Billing\nPayments, charges and invoices.\n    - I was charged twice this month")
	assert.True(t, strings.HasSuffix(prompt, "Your answer:"))

	signup := strings.Index(prompt, "### Signup")
	billing := strings.Index(prompt, "### Billing")
	assert.Less(t, signup, billing, "stages must keep taxonomy order")
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	t.Parallel()

	tax, err := Parse([]byte(sampleYAML), "inline")
	require.NoError(t, err)

	first, err := BuildPrompt("buffering on every show", tax)
	require.NoError(t, err)
	second, err := BuildPrompt("buffering on every show", tax)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildPromptRejectsBlankText(t *testing.T) {
	t.Parallel()

	tax, err := Parse([]byte(sampleYAML), "inline")
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := BuildPrompt(text, tax)
		assert.ErrorIs(t, err, domain.ErrEmptyText)
	}
}
