// Package text provides rune-aware helpers shared by the provider clients and
// the post formatter.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters (runes) in the given text.
//
//	CountRunes("hello")   // 5
//	CountRunes("héllo👋") // 6
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate shortens text to at most maxRunes runes including suffix.
// Text that already fits is returned unchanged. When suffix alone does not fit
// the text is cut without it.
func Truncate(text string, maxRunes int, suffix string) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	keep := maxRunes - utf8.RuneCountInString(suffix)
	if keep <= 0 {
		return string([]rune(text)[:maxRunes])
	}
	return string([]rune(text)[:keep]) + suffix
}
