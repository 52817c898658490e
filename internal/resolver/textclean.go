package resolver

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// wikiLinkRe matches [[target|display]] or [[target]] wikilinks, keeping the
// target (first) group: the target is typically the canonical location
// name, while the display side is free-form prose.
var wikiLinkRe = regexp.MustCompile(`\[\[([^\]|]+)(?:\|[^\]]*)?\]\]`)

// templateRe matches innermost {{...}} wikitext templates (those with no
// braces inside) for best-effort removal; one level of nesting is handled
// by applying it twice.
var templateRe = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// whitespaceRe collapses runs of whitespace.
var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanWikipediaLocation strips wikitext markup from an infobox field value:
// wikilinks resolve to their target, templates and HTML tags are stripped,
// non-breaking spaces become ordinary spaces, and whitespace is collapsed.
func CleanWikipediaLocation(raw string) string {
	s := raw

	// Templates may appear nested one level; two passes catches that without
	// a recursive parser, which this field-value use case doesn't warrant.
	s = templateRe.ReplaceAllString(s, "")
	s = templateRe.ReplaceAllString(s, "")

	s = wikiLinkRe.ReplaceAllString(s, "$1")

	s = stripHTMLTags(s)

	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	s = whitespaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// stripHTMLTags removes HTML tags from s using a tokenizer rather than a
// regex, so malformed or nested markup doesn't leak angle-bracket noise
// into the cleaned text.
func stripHTMLTags(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// NormalizeDisplayName reduces a comma-separated geocoder display string to
// "<first>, <last>", dropping intermediate administrative layers. A string
// with fewer than two segments is returned unchanged (aside from trimming).
func NormalizeDisplayName(display string) string {
	parts := strings.Split(display, ",")
	if len(parts) < 2 {
		return strings.TrimSpace(display)
	}
	first := strings.TrimSpace(parts[0])
	last := strings.TrimSpace(parts[len(parts)-1])
	return first + ", " + last
}
