package cleaner

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	mdImage    = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdLink     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdEmphasis = regexp.MustCompile("(\\*\\*|__|\\*|`)")
	mdHeading  = regexp.MustCompile(`(?m)^\s{0,3}(#{1,6}|>+)\s*`)
)

// Cleaner strips markup from scraped cell text using Bluemonday.
// CleanToText sanitizes with the cleaner's own policy.
type Cleaner struct {
	policy *bluemonday.Policy
}

// NewStrictCleaner creates a cleaner that strips ALL HTML
func NewStrictCleaner() *Cleaner {
	return &Cleaner{policy: bluemonday.StrictPolicy()}
}

// CleanToText removes all HTML and returns single-spaced plain text
func (c *Cleaner) CleanToText(s string) string {
	// keep cell and line boundaries from gluing words together
	s = strings.ReplaceAll(s, "<", " <")
	text := c.policy.Sanitize(s)
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// StripMarkdown removes inline markdown syntax left over from text-rendered pages
func (c *Cleaner) StripMarkdown(s string) string {
	s = mdImage.ReplaceAllString(s, "$1")
	s = mdLink.ReplaceAllString(s, "$1")
	s = mdHeading.ReplaceAllString(s, "")
	s = mdEmphasis.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
