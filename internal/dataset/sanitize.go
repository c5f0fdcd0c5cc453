package dataset

import (
	"strings"
	"unicode"
)

const maxComponentLen = 64

// SanitizeName reduces untrusted input to a string safe to embed in a
// filename or directory name: control characters are dropped, path
// separators and other disallowed runes become underscores, and any
// remaining ".." sequence is broken up so no traversal survives.
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if isAllowedNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	cleaned := b.String()
	for strings.Contains(cleaned, "..") {
		cleaned = strings.ReplaceAll(cleaned, "..", "_")
	}
	cleaned = strings.TrimLeft(cleaned, ". ")
	cleaned = strings.TrimSpace(cleaned)

	if maxLen > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxLen {
			cleaned = string(runes[:maxLen])
		}
	}
	return cleaned
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.':
		return true
	default:
		return false
	}
}
