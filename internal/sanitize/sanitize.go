// Package sanitize cleans donor-supplied free text before it is stored.
package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips markup (including script and style bodies), trims whitespace and
// clamps the result to maxLen runes.
func Text(input string, maxLen int) string {
	out := html.UnescapeString(strict.Sanitize(input))
	out = strings.TrimSpace(out)
	if maxLen > 0 && utf8.RuneCountInString(out) > maxLen {
		out = strings.TrimSpace(string([]rune(out)[:maxLen]))
	}
	return out
}

// Truncate clamps s to maxLen runes without any other processing.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen])
}
