// Package sentiment scores text polarity with the VADER lexicon and rules.
package sentiment

import (
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

const compoundPrecision = 10000

// Analyzer computes a compound polarity in [-1, 1]. It is deterministic
// and safe for concurrent use; the underlying lexicon is read-only after construction.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

var _ ports.SentimentScorer = (*Analyzer)(nil)

// NewAnalyzer loads the bundled VADER lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the compound polarity of text rounded to 4 decimals; 0 for empty or neutral text.
func (a *Analyzer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return round(a.vader.PolarityScores(text).Compound)
}

func round(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v*compoundPrecision) / compoundPrecision
	r = math.Max(-1, math.Min(1, r))
	if r == 0 {
		return 0
	}
	return r
}
