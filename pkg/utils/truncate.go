package utils

// Truncate shortens text to at most max runes, appending "..." when anything
// was cut. Rune-based so multi-byte characters never get split.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
