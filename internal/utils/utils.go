// Package utils holds small text helpers shared by providers and normalizers.
package utils

import "strings"

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// HardCut keeps the first limit runes of s. No ellipsis and no word boundary search:
// profile and listing texts are cut the same way before they reach a provider.
// A non-positive limit disables the cut.
func HardCut(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
