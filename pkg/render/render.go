// Package render prepares article text for display. Summaries and
// translations come from remote services and carry markup, so everything
// goes through a bluemonday policy before it is shown.
package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/dtnitsch/article-summarizer/models"
	"github.com/microcosm-cc/bluemonday"
)

var lineBreak = regexp.MustCompile(`(?i)<br\s*/?>`)

type Renderer struct {
	html  *bluemonday.Policy
	plain *bluemonday.Policy
}

func New() *Renderer {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{
		html:  p,
		plain: bluemonday.StrictPolicy(),
	}
}

// HTML returns markup safe to embed in a page.
func (r *Renderer) HTML(s string) string {
	return strings.TrimSpace(r.html.Sanitize(s))
}

// Text returns s for a terminal: line breaks become newlines and every
// other tag is dropped.
func (r *Renderer) Text(s string) string {
	s = lineBreak.ReplaceAllString(s, "\n")
	s = r.plain.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(s))
}

// Article renders the text a reader should see for a.
func (r *Renderer) Article(a models.Article, asHTML bool) string {
	if asHTML {
		return r.HTML(a.DisplayText())
	}
	return r.Text(a.DisplayText())
}
