package sentiment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"literary-analysis/internal/domain/entity"
)

func score(t *testing.T, text string) entity.Sentiment {
	t.Helper()
	s, err := NewLexicon().Score(context.Background(), text)
	require.NoError(t, err)
	require.NotNil(t, s.Compound)
	return s
}

func TestLexicon_Labels(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		label string
	}{
		{name: "positive", text: "I love this", label: entity.LabelPositive},
		{name: "negated", text: "This is not good", label: entity.LabelNegative},
		{name: "neutral", text: "The table is wooden", label: entity.LabelNeutral},
		{name: "contrast", text: "The food was good but the service was terrible", label: entity.LabelNegative},
		{name: "contraction negation", text: "I don't like it, it isn't nice", label: entity.LabelNegative},
		{name: "spanish", text: "Un día feliz con mucho amor", label: entity.LabelPositive},
		{name: "spanish negative", text: "Una tristeza terrible", label: entity.LabelNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.label, score(t, tt.text).PolarityLabel)
		})
	}
}

func TestLexicon_KnownValues(t *testing.T) {
	s := score(t, "I love this")
	assert.InDelta(t, 0.637, *s.Compound, 1e-9)
	assert.InDelta(t, 0.677, *s.Positive, 1e-9)
	assert.InDelta(t, 0.0, *s.Negative, 1e-9)
	assert.InDelta(t, 0.323, *s.Neutral, 1e-9)
	assert.Equal(t, *s.Compound, s.PolarityScore)

	s = score(t, "This is not good")
	assert.InDelta(t, -0.341, *s.Compound, 1e-9)
}

func TestLexicon_NeutralConfidence(t *testing.T) {
	s := score(t, "The table is wooden")
	assert.Equal(t, 0.0, *s.Compound)
	assert.Equal(t, 1.0, *s.Neutral)
	assert.Equal(t, 1.0, *s.Confidence)
}

func TestLexicon_Intensifiers(t *testing.T) {
	base := *score(t, "The movie was good").Compound

	assert.Greater(t, *score(t, "The movie was very good").Compound, base, "booster")
	assert.Greater(t, *score(t, "The movie was good!!!").Compound, base, "exclamation")
	assert.Greater(t, *score(t, "The movie was GOOD").Compound, base, "caps")
	assert.Less(t, *score(t, "The movie was slightly good").Compound, base, "dampener")
}

func TestLexicon_ExclamationCapped(t *testing.T) {
	four := *score(t, "good!!!!").Compound
	many := *score(t, "good!!!!!!!!!!").Compound
	assert.Equal(t, four, many)
}

func TestLexicon_Bounds(t *testing.T) {
	s := score(t, strings.Repeat("wonderful amazing superb love ", 50))
	assert.LessOrEqual(t, *s.Compound, 1.0)
	assert.GreaterOrEqual(t, *s.Compound, 0.9)

	s = score(t, strings.Repeat("horrible tragic disaster ", 50))
	assert.GreaterOrEqual(t, *s.Compound, -1.0)

	sum := *s.Positive + *s.Negative + *s.Neutral
	assert.InDelta(t, 1.0, sum, 0.002)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, entity.LabelPositive, Label(0.05))
	assert.Equal(t, entity.LabelNeutral, Label(0.049))
	assert.Equal(t, entity.LabelNeutral, Label(-0.049))
	assert.Equal(t, entity.LabelNegative, Label(-0.05))
}

func TestParseLexicon_SkipsCommentsAndBadLines(t *testing.T) {
	got := parseLexicon("# header\ngood\t1.5\nbroken line\nbad\tnan-ish\n\nfine\t0.8\n")
	assert.Equal(t, map[string]float64{"good": 1.5, "fine": 0.8}, got)
}
