package taxonomy

import (
	"strings"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
)

const promptPreamble = `You are a customer experience analyst specializing in OTT platforms.

Below is a Reddit post followed by possible customer journey stages. Classify the post into the most relevant stage. Respond with only the stage name.`

// BuildPrompt renders the classification prompt for one post. Every stage is
// included in taxonomy order; nothing is truncated.
func BuildPrompt(text string, tax *Taxonomy) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyText
	}
	if tax.Len() == 0 {
		return "", &domain.ConfigError{Reason: "taxonomy has no stages"}
	}

	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nReddit Post:\n\"\"\"")
	b.WriteString(text)
	b.WriteString("\"\"\"\n\nStages:\n")

	for _, st := range tax.stages {
		b.WriteString("\n\n### ")
		b.WriteString(st.Name)
		b.WriteString("\n")
		b.WriteString(st.Description)
		for _, ex := range st.Examples {
			b.WriteString("\n    - ")
			b.WriteString(ex)
		}
	}

	b.WriteString("\n\nYour answer:")
	return b.String(), nil
}
