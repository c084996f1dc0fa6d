// Package sentiment scores the polarity of a text. The fast path is a
// rule-based valence lexicon scorer; the smart path asks an LLM provider
// (OpenAI or Claude) and falls back to the lexicon when the provider is not
// configured or fails.
package sentiment

import (
	"bufio"
	"context"
	_ "embed"
	"math"
	"strconv"
	"strings"
	"unicode"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/utils/text"
)

//go:embed lexicon.tsv
var lexiconTSV string

// LexiconVersion is recorded as model_version for lexicon scores.
const LexiconVersion = "lexicon-1"

// Label thresholds on the compound score.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

const (
	boosterIncr    = 0.293
	boosterDecr    = -0.293
	capsIncr       = 0.733
	negationScalar = -0.74
	exclaimAmp     = 0.292
	questionAmp    = 0.18
	maxQuestionAmp = 0.96
	normAlpha      = 15.0
)

var boosters = map[string]float64{
	"absolutely": boosterIncr, "amazingly": boosterIncr, "completely": boosterIncr,
	"deeply": boosterIncr, "enormously": boosterIncr, "entirely": boosterIncr,
	"especially": boosterIncr, "extremely": boosterIncr, "fully": boosterIncr,
	"greatly": boosterIncr, "highly": boosterIncr, "hugely": boosterIncr,
	"incredibly": boosterIncr, "intensely": boosterIncr, "really": boosterIncr,
	"remarkably": boosterIncr, "so": boosterIncr, "totally": boosterIncr,
	"truly": boosterIncr, "utterly": boosterIncr, "very": boosterIncr,
	"most": boosterIncr, "more": boosterIncr,
	"muy": boosterIncr, "realmente": boosterIncr, "sumamente": boosterIncr, "tan": boosterIncr,
	"barely": boosterDecr, "hardly": boosterDecr, "less": boosterDecr,
	"marginally": boosterDecr, "slightly": boosterDecr, "somewhat": boosterDecr,
	"apenas": boosterDecr, "poco": boosterDecr,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nobody": {}, "nothing": {},
	"neither": {}, "nor": {}, "nowhere": {}, "cannot": {}, "without": {},
	"nunca": {}, "jamás": {}, "nada": {}, "ni": {}, "tampoco": {}, "sin": {},
}

// Lexicon is the rule-based scorer. It is immutable after construction and
// safe for concurrent use.
type Lexicon struct {
	valence map[string]float64
}

// NewLexicon loads the embedded valence table.
func NewLexicon() *Lexicon {
	return &Lexicon{valence: parseLexicon(lexiconTSV)}
}

func parseLexicon(src string) map[string]float64 {
	out := make(map[string]float64)
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, val, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			continue
		}
		out[text.Normalize(strings.TrimSpace(word))] = v
	}
	return out
}

// Name identifies the scorer in metrics.
func (l *Lexicon) Name() string { return "lexicon" }

// Version is stored as the analysis model_version.
func (l *Lexicon) Version() string { return LexiconVersion }

// Score returns compound, pos/neg/neu proportions and the derived label.
func (l *Lexicon) Score(_ context.Context, input string) (entity.Sentiment, error) {
	input = text.Normalize(input)
	raw := strings.Fields(input)
	words := make([]string, len(raw))
	for i, w := range raw {
		words[i] = strings.ToLower(strings.TrimFunc(w, isTrimmable))
	}
	capDiff := hasCapDifferential(raw)

	sentiments := make([]float64, len(words))
	for i, w := range words {
		v, ok := l.valence[w]
		if !ok {
			continue
		}
		if capDiff && isAllCaps(raw[i]) {
			v += math.Copysign(capsIncr, v)
		}
		for back := 1; back <= 3 && i-back >= 0; back++ {
			prev := words[i-back]
			if _, valenced := l.valence[prev]; valenced {
				continue
			}
			s := boosterScalar(prev, v, raw[i-back], capDiff)
			switch back {
			case 2:
				s *= 0.95
			case 3:
				s *= 0.9
			}
			v += s
		}
		for back := 1; back <= 3 && i-back >= 0; back++ {
			if isNegation(words[i-back]) {
				v *= negationScalar
			}
		}
		sentiments[i] = v
	}

	applyContrast(words, sentiments)

	punct := punctuationEmphasis(input)
	return buildSentiment(sentiments, punct), nil
}

func isTrimmable(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isAllCaps(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// hasCapDifferential reports whether some, but not all, words are shouted.
func hasCapDifferential(words []string) bool {
	caps := 0
	for _, w := range words {
		if isAllCaps(w) {
			caps++
		}
	}
	return caps > 0 && caps < len(words)
}

func isNegation(w string) bool {
	if _, ok := negations[w]; ok {
		return true
	}
	return strings.HasSuffix(w, "n't")
}

func boosterScalar(word string, valence float64, rawWord string, capDiff bool) float64 {
	scalar, ok := boosters[word]
	if !ok {
		return 0
	}
	if valence < 0 {
		scalar = -scalar
	}
	if capDiff && isAllCaps(rawWord) {
		scalar += math.Copysign(capsIncr, valence)
	}
	return scalar
}

// applyContrast damps sentiment before "but"/"pero" and amplifies it after.
func applyContrast(words []string, sentiments []float64) {
	at := -1
	for i, w := range words {
		if w == "but" || w == "pero" {
			at = i
			break
		}
	}
	if at < 0 {
		return
	}
	for i := range sentiments {
		switch {
		case i < at:
			sentiments[i] *= 0.5
		case i > at:
			sentiments[i] *= 1.5
		}
	}
}

func punctuationEmphasis(s string) float64 {
	ep := strings.Count(s, "!")
	if ep > 4 {
		ep = 4
	}
	amp := float64(ep) * exclaimAmp

	qm := strings.Count(s, "?")
	if qm > 1 {
		if qm <= 3 {
			amp += float64(qm) * questionAmp
		} else {
			amp += maxQuestionAmp
		}
	}
	return amp
}

func buildSentiment(sentiments []float64, punct float64) entity.Sentiment {
	sum := 0.0
	for _, s := range sentiments {
		sum += s
	}
	switch {
	case sum > 0:
		sum += punct
	case sum < 0:
		sum -= punct
	}
	compound := normalize(sum)

	var posSum, negSum float64
	neuCount := 0
	for _, s := range sentiments {
		switch {
		case s > 0:
			posSum += s + 1
		case s < 0:
			negSum += s - 1
		default:
			neuCount++
		}
	}
	if posSum > math.Abs(negSum) {
		posSum += punct
	} else if posSum < math.Abs(negSum) {
		negSum -= punct
	}

	var pos, neg, neu float64
	total := posSum + math.Abs(negSum) + float64(neuCount)
	if total > 0 {
		pos = math.Abs(posSum / total)
		neg = math.Abs(negSum / total)
		neu = math.Abs(float64(neuCount) / total)
	} else {
		neu = 1
	}

	compound = round3(compound)
	pos, neg, neu = round3(pos), round3(neg), round3(neu)

	label := Label(compound)
	confidence := math.Abs(compound)
	if label == entity.LabelNeutral {
		confidence = neu
	}

	return entity.Sentiment{
		PolarityLabel: label,
		PolarityScore: compound,
		Confidence:    &confidence,
		Compound:      &compound,
		Positive:      &pos,
		Negative:      &neg,
		Neutral:       &neu,
	}
}

// Label maps a compound score in [-1, 1] to positive, negative or neutral.
func Label(compound float64) string {
	switch {
	case compound >= PositiveThreshold:
		return entity.LabelPositive
	case compound <= NegativeThreshold:
		return entity.LabelNegative
	default:
		return entity.LabelNeutral
	}
}

func normalize(score float64) float64 {
	n := score / math.Sqrt(score*score+normAlpha)
	return math.Max(-1, math.Min(1, n))
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
