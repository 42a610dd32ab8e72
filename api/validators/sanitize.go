package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims the input, collapses inner whitespace runs to a single
// space and truncates to maxLen runes (0 disables the limit).
func SanitizeString(input string, maxLen int) string {
	out := strings.Join(strings.Fields(input), " ")
	if maxLen > 0 {
		if runes := []rune(out); len(runes) > maxLen {
			out = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return out
}

// SanitizePhone keeps the digits of a phone number and a leading "+", so
// "+965 5555-1234" and "+96555551234" are stored the same way.
func SanitizePhone(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	var b strings.Builder
	for i, r := range trimmed {
		switch {
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
