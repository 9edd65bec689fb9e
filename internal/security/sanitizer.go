// Package security provides HTML sanitization for admin-authored content.
package security

import "github.com/microcosm-cc/bluemonday"

// Sanitizer cleans HTML produced by the admin article editor before it is
// persisted. Allow-list based; same input always yields the same output.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the article content policy: basic formatting tags,
// headings, links and images. Script, style and event attributes never pass.
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "strong", "em",
		"h2", "h3", "h4",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowImages()

	return &Sanitizer{policy: p}
}

// Sanitize returns the cleaned HTML.
func (s *Sanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
