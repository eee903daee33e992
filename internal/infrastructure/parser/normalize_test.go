package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
)

func TestNormalizePost(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		in        domain.Post
		wantTitle string
		wantBody  string
	}{
		{
			name:      "escaped reddit html",
			in:        domain.Post{Title: "Charged &amp; billed twice", SelfTextHTML: `&lt;!-- SC_OFF --&gt;&lt;div class="md"&gt;&lt;p&gt;First line&lt;/p&gt;&lt;p&gt;Second   line&lt;/p&gt;&lt;/div&gt;`},
			wantTitle: "Charged & billed twice",
			wantBody:  "First line\nSecond line",
		},
		{
			name:     "raw html body",
			in:       domain.Post{Title: "t", SelfText: "<p>App <b>crashes</b></p><script>x()</script>"},
			wantBody: "App crashes",
		},
		{
			name:     "plain text kept",
			in:       domain.Post{Title: "  spaced   title ", SelfText: "a  <3 b\n\n\n\nc"},
			wantBody: "a <3 b\n\nc",
		},
		{
			name:     "removed body",
			in:       domain.Post{Title: "gone", SelfText: "[removed]"},
			wantBody: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizePost(tc.in)
			if tc.wantTitle != "" {
				assert.Equal(t, tc.wantTitle, got.Title)
			}
			assert.Equal(t, tc.wantBody, got.SelfText)
		})
	}
	assert.Equal(t, "spaced title", NormalizePost(domain.Post{Title: "  spaced   title "}).Title)
}
