// Package slug derives remote-style identifiers from display titles.
package slug

import (
	"strings"
	"unicode"
)

// Predict returns the identifier the remote platform is expected to assign
// to an item titled title. Letters and digits are kept, whitespace and
// hyphen runs become a single hyphen, everything else is dropped.
func Predict(title string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingSep = true
		}
	}
	return b.String()
}

// Humanize turns a file stem into a fallback title: "week-1-intro"
// becomes "Week 1 Intro".
func Humanize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
