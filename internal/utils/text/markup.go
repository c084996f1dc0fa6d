package text

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// StripMarkup removes HTML tags from pasted text and decodes entities.
// Text without '<' is returned unchanged.
func StripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	return html.UnescapeString(strictPolicy.Sanitize(s))
}
