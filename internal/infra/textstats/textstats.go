// Package textstats computes word counts, the most frequent content words
// and the language of a text.
package textstats

import (
	"sort"

	"github.com/abadojack/whatlanggo"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/utils/text"
)

// DefaultTopWords is the size of the top words table.
const DefaultTopWords = 10

// minWordRunes excludes short function words the stop lists miss.
const minWordRunes = 4

// Stats is the statistical part of an analysis result.
type Stats struct {
	WordCount int
	TopWords  []entity.WordFrequency
	Language  string
}

// Compute counts content words: Latin letter runs, lowercased, without stop
// words and longer than three characters. WordCount is the number of such
// words, not of all tokens.
func Compute(s string) Stats {
	var filtered []string
	for _, w := range text.LatinWords(s) {
		if text.CountRunes(w) < minWordRunes || text.IsStopWord(w) {
			continue
		}
		filtered = append(filtered, w)
	}
	return Stats{
		WordCount: len(filtered),
		TopWords:  mostCommon(filtered, DefaultTopWords),
		Language:  DetectLanguage(s),
	}
}

// mostCommon orders by count, then by first occurrence.
func mostCommon(words []string, n int) []entity.WordFrequency {
	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})
	if len(order) > n {
		order = order[:n]
	}
	out := make([]entity.WordFrequency, 0, len(order))
	for _, w := range order {
		out = append(out, entity.WordFrequency{Word: w, Count: counts[w]})
	}
	return out
}

// DetectLanguage returns the ISO 639-1 code of s, or "" when the detection
// is not reliable (typically very short input).
func DetectLanguage(s string) string {
	info := whatlanggo.Detect(s)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
