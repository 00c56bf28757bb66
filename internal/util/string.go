package util

import "strings"

// RuneLen counts characters, not bytes. Korean text makes the distinction matter
// for every length band in this codebase.
func RuneLen(s string) int {
	return len([]rune(s))
}

// TruncateRunes truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateRunes(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tokens splits on whitespace and drops tokens shorter than minRunes.
func Tokens(s string, minRunes int) []string {
	fields := strings.Fields(s)
	result := make([]string, 0, len(fields))
	for _, f := range fields {
		if RuneLen(f) >= minRunes {
			result = append(result, f)
		}
	}
	return result
}
