// Package parser cleans collector records before they reach the classifier.
package parser

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
)

var (
	blankRun   = regexp.MustCompile(`[ \t\f\v]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
	markupHint = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][^>]*>`)
)

// placeholders the source uses for bodies that are gone.
var removedBodies = map[string]bool{
	"[removed]": true,
	"[deleted]": true,
}

// NormalizePost returns a copy of p with plain-text title and body.
// A rendered HTML body takes precedence over the markdown body when present.
func NormalizePost(p domain.Post) domain.Post {
	p.Title = collapse(html.UnescapeString(p.Title))

	body := p.SelfText
	if strings.TrimSpace(p.SelfTextHTML) != "" {
		if text, err := HTMLToText(p.SelfTextHTML); err == nil {
			body = text
		}
	} else if markupHint.MatchString(body) {
		if text, err := HTMLToText(body); err == nil {
			body = text
		}
	}
	body = collapse(html.UnescapeString(body))
	if removedBodies[body] {
		body = ""
	}
	p.SelfText = body
	return p
}

// HTMLToText renders an HTML fragment as text, one block element per line.
// Entity-escaped fragments are unescaped first.
func HTMLToText(fragment string) (string, error) {
	if !markupHint.MatchString(fragment) {
		fragment = html.UnescapeString(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, div, blockquote, pre, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return collapse(doc.Text()), nil
}

func collapse(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(blankRun.ReplaceAllString(line, " "))
	}
	out := strings.Join(lines, "\n")
	out = newlineRun.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
