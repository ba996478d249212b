package utils

// Truncate shortens s to at most maxLen runes, marking the cut with an
// ellipsis. Rune-based so multibyte memory previews never split mid-character.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
