// Package keywords extracts the salient terms of a text: TF-IDF over
// sentences for normal input, first distinct words for single-sentence input
// and a stemmed frequency count when TF-IDF has no vocabulary to work with.
package keywords

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kljensen/snowball"

	"literary-analysis/internal/utils/text"
)

// DefaultMaxKeywords is the number of keywords returned by default.
const DefaultMaxKeywords = 10

// errEmptyVocabulary means every token was a stop word.
var errEmptyVocabulary = errors.New("empty vocabulary")

var wordRun = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// fallbackStopWords extends the English list for the frequency fallback.
var fallbackStopWords = map[string]struct{}{
	"this": {}, "that": {}, "these": {}, "those": {}, "with": {}, "from": {}, "have": {},
	"will": {}, "been": {}, "were": {}, "your": {}, "they": {}, "them": {}, "their": {},
}

// Extractor is stateless and safe for concurrent use.
type Extractor struct {
	max int
}

// NewExtractor returns an extractor yielding at most max keywords
// (DefaultMaxKeywords when max <= 0).
func NewExtractor(max int) *Extractor {
	if max <= 0 {
		max = DefaultMaxKeywords
	}
	return &Extractor{max: max}
}

// Extract returns up to max keywords, most relevant first. It never returns nil.
func (e *Extractor) Extract(input string) []string {
	sentences := text.SplitSentences(input)
	if len(sentences) < 2 {
		return firstDistinctWords(input, e.max)
	}
	kw, err := tfidf(sentences, e.max)
	if err != nil {
		return frequency(input, e.max)
	}
	return kw
}

// asciiWords returns lowercased whole words of at least minLen ASCII letters.
// A run touching a non-ASCII letter or digit is not a word.
func asciiWords(s string, minLen int) []string {
	var out []string
	for _, run := range wordRun.FindAllString(strings.ToLower(s), -1) {
		if len(run) < minLen || !isASCIILetters(run) {
			continue
		}
		out = append(out, run)
	}
	return out
}

func isASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

func firstDistinctWords(s string, max int) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, max)
	for _, w := range asciiWords(s, 4) {
		if len(out) == max {
			break
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// sentenceTerms tokenizes one sentence into unigrams and bigrams after
// stop word removal.
func sentenceTerms(sentence string) []string {
	var tokens []string
	for _, tok := range wordRun.FindAllString(strings.ToLower(text.Normalize(sentence)), -1) {
		if text.CountRunes(tok) < 2 || text.IsEnglishStopWord(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	terms := make([]string, 0, 2*len(tokens))
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// tfidf scores terms with smoothed IDF and L2-normalised rows, averages the
// scores over all sentences and returns the best max terms. Only the max
// most frequent terms of the corpus are considered.
func tfidf(sentences []string, max int) ([]string, error) {
	n := len(sentences)
	counts := make([]map[string]int, n)
	total := make(map[string]int)
	df := make(map[string]int)

	for i, s := range sentences {
		counts[i] = make(map[string]int)
		for _, term := range sentenceTerms(s) {
			counts[i][term]++
			total[term]++
		}
		for term := range counts[i] {
			df[term]++
		}
	}
	if len(total) == 0 {
		return nil, errEmptyVocabulary
	}

	vocab := make([]string, 0, len(total))
	for term := range total {
		vocab = append(vocab, term)
	}
	sort.Slice(vocab, func(a, b int) bool {
		if total[vocab[a]] != total[vocab[b]] {
			return total[vocab[a]] > total[vocab[b]]
		}
		return vocab[a] < vocab[b]
	})
	if len(vocab) > max {
		vocab = vocab[:max]
	}

	idf := make(map[string]float64, len(vocab))
	for _, term := range vocab {
		idf[term] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	mean := make(map[string]float64, len(vocab))
	for i := range sentences {
		row := make(map[string]float64)
		norm := 0.0
		for _, term := range vocab {
			if c := counts[i][term]; c > 0 {
				w := float64(c) * idf[term]
				row[term] = w
				norm += w * w
			}
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for term, w := range row {
			mean[term] += w / norm / float64(n)
		}
	}

	sort.Slice(vocab, func(a, b int) bool {
		if mean[vocab[a]] != mean[vocab[b]] {
			return mean[vocab[a]] > mean[vocab[b]]
		}
		return vocab[a] > vocab[b]
	})

	out := make([]string, 0, len(vocab))
	for _, term := range vocab {
		if mean[term] > 0 {
			out = append(out, term)
		}
	}
	return out, nil
}

// frequency counts 4+ letter words grouped by their English stem and returns
// the most frequent surface form of each group.
func frequency(s string, max int) []string {
	type group struct {
		count   int
		order   int
		surface map[string]int
	}
	groups := make(map[string]*group)

	for _, w := range asciiWords(s, 4) {
		if text.IsEnglishStopWord(w) {
			continue
		}
		if _, stop := fallbackStopWords[w]; stop {
			continue
		}
		stem, err := snowball.Stem(w, "english", true)
		if err != nil || stem == "" {
			stem = w
		}
		g, ok := groups[stem]
		if !ok {
			g = &group{order: len(groups), surface: make(map[string]int)}
			groups[stem] = g
		}
		g.count++
		g.surface[w]++
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(a, b int) bool {
		if ordered[a].count != ordered[b].count {
			return ordered[a].count > ordered[b].count
		}
		return ordered[a].order < ordered[b].order
	})

	out := make([]string, 0, max)
	for _, g := range ordered {
		if len(out) == max {
			break
		}
		out = append(out, mostFrequentSurface(g.surface))
	}
	return out
}

func mostFrequentSurface(forms map[string]int) string {
	best, bestN := "", -1
	for f, n := range forms {
		if n > bestN || (n == bestN && f < best) {
			best, bestN = f, n
		}
	}
	return best
}
