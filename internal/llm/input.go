package llm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxMessageLength is the longest message, in characters, the client will
// send to the model.
const MaxMessageLength = 10000

// ValidateMessage reports whether text is sendable: non-empty after trimming
// and within MaxMessageLength characters.
func ValidateMessage(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return utf8.RuneCountInString(text) <= MaxMessageLength
}

// Sanitize strips control characters, collapses runs of whitespace into
// single spaces, and trims the result. Sanitize is idempotent:
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			// Newlines and tabs are both control and space; space handling wins.
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
		case unicode.IsControl(r):
			// Dropped outright.
		default:
			b.WriteRune(r)
			inSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}
