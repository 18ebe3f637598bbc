package safety

import (
	"strings"
)

// Sanitize strips control characters (keeping newline and tab), trims
// surrounding whitespace and truncates to maxLen characters.
func Sanitize(text string, maxLen int) string {
	cleaned, _ := sanitize(text, maxLen)
	return cleaned
}

// sanitize also returns the length before truncation.
func sanitize(text string, maxLen int) (string, int) {
	if text == "" {
		return "", 0
	}

	cleaned := strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, text)
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	n := len(runes)
	if maxLen > 0 && n > maxLen {
		cleaned = string(runes[:maxLen])
	}
	return cleaned, n
}

// isControl reports ASCII control characters other than '\n' and '\t'.
func isControl(r rune) bool {
	if r == '\n' || r == '\t' {
		return false
	}
	return r < 0x20 || r == 0x7f
}
