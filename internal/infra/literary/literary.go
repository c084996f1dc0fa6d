// Package literary produces heuristic literary insights for a text: a short
// and a medium extractive summary, the dominant movement, likely influences
// and aesthetic styles. Detection is keyword based and deliberately coarse;
// every result carries a disclaimer saying so.
package literary

import (
	"sort"
	"strings"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/utils/text"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// primaryThreshold is the score a movement needs to be named primary.
	primaryThreshold = 0.1
	// styleThreshold is the score a movement needs to be listed as a style.
	styleThreshold = 0.05
	highConfidence   = 0.3
	mediumConfidence = 0.15

	maxInfluences = 5
	maxStyles     = 3

	// Philosophies need stronger evidence than authors.
	minAuthorMatches     = 1
	minPhilosophyMatches = 2

	shortSummarySentences = 2
	shortSummaryWords     = 100
	mediumSummaryWords    = 200
	minSummarySentenceLen = 10

	fallbackMovement = "Contemporary/Mixed"
	fallbackStyle    = "Contemporary"

	influenceAuthor     = "author"
	influencePhilosophy = "philosophy"

	noSummary = "Text is too short to generate a meaningful summary."
)

// TableProvider returns the keyword tables to use for one analysis.
type TableProvider interface {
	Current() *Tables
}

// Analyzer computes literary insights. It is safe for concurrent use.
type Analyzer struct {
	tables TableProvider
}

// NewAnalyzer builds an analyzer over tables. A nil provider uses the
// built-in tables.
func NewAnalyzer(tables TableProvider) *Analyzer {
	if tables == nil {
		tables = NewTableSource(nil, nil)
	}
	return &Analyzer{tables: tables}
}

// Analyze returns the insights for s. language is entity.LanguageEnglish or
// entity.LanguageSpanish; summaryLength is entity.SummaryShort or
// entity.SummaryMedium. Text below the minimum length fails with
// entity.ErrTextTooShort.
func (a *Analyzer) Analyze(s, lang, summaryLength string) (*entity.LiteraryInsights, error) {
	if err := entity.ValidateLiteraryText(s); err != nil {
		return nil, err
	}

	tables := a.tables.Current()
	lower := strings.ToLower(s)

	scores := movementScores(tables.Movements, lower)

	primary := fallbackMovement
	best := 0
	for i := range scores {
		if scores[i].score > scores[best].score {
			best = i
		}
	}
	if len(scores) > 0 && scores[best].score > primaryThreshold {
		primary = a.titleCase(scores[best].name)
	}

	tr := translatorFor(lang)

	insights := &entity.LiteraryInsights{
		MovementOrTendency: tr.movement(primary),
		Influences:         a.influences(tables, lower, tr),
		AestheticStyles:    a.styles(scores, tr),
		Disclaimer:         tr.disclaimer,
	}

	// The short summary is always present; medium only when asked for.
	short := Summarize(s, entity.SummaryShort)
	insights.SummaryShort = &short
	if summaryLength != entity.SummaryShort {
		medium := Summarize(s, entity.SummaryMedium)
		insights.SummaryMedium = &medium
	}
	return insights, nil
}

type movementScore struct {
	name  string
	score float64
}

// movementScores is the fraction of each movement's keywords found in lower,
// in table order.
func movementScores(movements []Entry, lower string) []movementScore {
	out := make([]movementScore, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementScore{
			name:  m.Name,
			score: float64(countMatches(m.Keywords, lower)) / float64(max(len(m.Keywords), 1)),
		})
	}
	return out
}

// countMatches counts keywords occurring anywhere in lower. Matching is by
// substring, so "stream" also matches "streaming".
func countMatches(keywords []string, lower string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			n++
		}
	}
	return n
}

func (a *Analyzer) influences(tables *Tables, lower string, tr translator) []entity.Influence {
	out := make([]entity.Influence, 0, maxInfluences)
	add := func(entries []Entry, kind string, minMatches int) {
		for _, e := range entries {
			if len(out) == maxInfluences {
				return
			}
			if countMatches(e.Keywords, lower) < minMatches {
				continue
			}
			name := a.titleCase(e.Name)
			out = append(out, entity.Influence{
				Name:      name,
				Type:      tr.influenceType(kind),
				Rationale: tr.rationale + " " + name,
			})
		}
	}
	add(tables.Authors, influenceAuthor, minAuthorMatches)
	add(tables.Philosophies, influencePhilosophy, minPhilosophyMatches)
	return out
}

func (a *Analyzer) styles(scores []movementScore, tr translator) []entity.AestheticStyle {
	ranked := make([]movementScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]entity.AestheticStyle, 0, maxStyles)
	for i := 0; i < len(ranked) && i < maxStyles; i++ {
		if ranked[i].score <= styleThreshold {
			continue
		}
		out = append(out, entity.AestheticStyle{
			Style:      tr.movement(a.titleCase(ranked[i].name)),
			Confidence: tr.confidence(confidenceFor(ranked[i].score)),
		})
	}
	if len(out) == 0 {
		out = append(out, entity.AestheticStyle{
			Style:      tr.movement(fallbackStyle),
			Confidence: tr.confidence("low"),
		})
	}
	return out
}

func confidenceFor(score float64) string {
	switch {
	case score > highConfidence:
		return "high"
	case score > mediumConfidence:
		return "medium"
	default:
		return "low"
	}
}

// titleCase upper-cases the first letter of every word. A Caser keeps
// state, so one is made per call.
func (a *Analyzer) titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// Summarize builds an extractive summary from the leading sentences of s.
// Sentences of ten characters or fewer are ignored. A short summary takes
// up to two sentences and 100 words; a medium one takes between three and
// five sentences (a third of the text) and up to 200 words.
func Summarize(s, length string) string {
	var sentences []string
	for _, sent := range text.SplitSentences(s) {
		if text.CountRunes(sent) > minSummarySentenceLen {
			sentences = append(sentences, sent)
		}
	}
	if len(sentences) == 0 {
		return noSummary
	}

	take, wordCap := shortSummarySentences, shortSummaryWords
	if length != entity.SummaryShort {
		take, wordCap = min(5, max(3, len(sentences)/3)), mediumSummaryWords
	}
	take = min(take, len(sentences))

	summary := strings.Join(sentences[:take], ". ")
	if words := strings.Fields(summary); len(words) > wordCap {
		return strings.Join(words[:wordCap], " ") + "..."
	}
	return summary + "."
}
