package utils

import "unicode/utf8"

// CountRunes returns the character length of text.
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// TruncateRunes cuts text to at most limit characters without splitting a rune.
func TruncateRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}

// Preview truncates text to limit characters, appending "..." only when
// something was cut.
func Preview(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return TruncateRunes(text, limit) + "..."
}
