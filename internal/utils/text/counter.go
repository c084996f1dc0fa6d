// Package text provides the tokenizing helpers shared by the analyzers:
// rune counting, sentence splitting, word extraction and stop word lists.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Byte length is wrong for accented text, so every length limit goes through
// this function.
//
// Examples:
//
//	CountRunes("hello")   // returns 5
//	CountRunes("canción") // returns 7
//	CountRunes("")        // returns 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// TruncateRunes cuts s to at most n runes without splitting a character.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
