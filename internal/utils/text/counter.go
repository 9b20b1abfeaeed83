// Package text provides utilities for text processing shared by the
// classifier and notifier packages.
package text

// CountRunes counts the number of Unicode characters (runes) in the given text.
// This function correctly handles multi-byte characters including accented
// author names, math symbols and emoji by counting runes instead of bytes.
//
// Examples:
//
//	CountRunes("hello")   // returns 5
//	CountRunes("Schrödinger") // returns 11
//	CountRunes("")        // returns 0
func CountRunes(text string) int {
	return len([]rune(text))
}

// Truncate shortens text to at most maxRunes runes, ending with suffix when
// anything was cut. It never splits a multi-byte character.
func Truncate(text string, maxRunes int, suffix string) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	suffixRunes := []rune(suffix)
	cut := maxRunes - len(suffixRunes)
	if cut < 0 {
		return string(suffixRunes[:maxRunes])
	}
	return string(runes[:cut]) + suffix
}
