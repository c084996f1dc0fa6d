package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	sentenceBoundary = regexp.MustCompile(`[.!?]+`)
	latinWord        = regexp.MustCompile(`[a-záéíóúñü]+`)
	asciiWord        = regexp.MustCompile(`[a-zA-Z]+`)
)

// Normalize returns s in Unicode NFC form so that a decomposed "é"
// (e + U+0301) matches the precomposed letter in word patterns.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// SplitSentences splits on runs of '.', '!' and '?' and returns the trimmed
// non-empty pieces. Terminators are dropped.
func SplitSentences(s string) []string {
	parts := sentenceBoundary.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LatinWords lowercases s and returns its runs of Latin letters, including
// the Spanish accented vowels, ñ and ü.
func LatinWords(s string) []string {
	return latinWord.FindAllString(strings.ToLower(Normalize(s)), -1)
}

// ASCIIWords returns runs of ASCII letters in s, case preserved.
func ASCIIWords(s string) []string {
	return asciiWord.FindAllString(s, -1)
}
