// Package keyphrase extracts ranked 1-3 token phrases from a text corpus.
package keyphrase

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lower-cases text and splits it into word tokens of two or more characters.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Candidates returns distinct contiguous n-grams of minN..maxN tokens, built over
// the token stream left after stop-word removal. Order is first appearance.
func Candidates(text string, minN, maxN int, stop map[string]struct{}) []string {
	tokens := Tokenize(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, skip := stop[tok]; skip {
			continue
		}
		kept = append(kept, tok)
	}

	seen := make(map[string]struct{})
	var out []string
	for i := range kept {
		for n := minN; n <= maxN; n++ {
			if i+n > len(kept) {
				break
			}
			phrase := strings.Join(kept[i:i+n], " ")
			if _, ok := seen[phrase]; ok {
				continue
			}
			seen[phrase] = struct{}{}
			out = append(out, phrase)
		}
	}
	return out
}
