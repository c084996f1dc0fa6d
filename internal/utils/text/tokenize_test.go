package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"literary-analysis/internal/utils/text"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "basic", in: "One. Two! Three?", want: []string{"One", "Two", "Three"}},
		{name: "runs of terminators", in: "Wait... what?! Yes.", want: []string{"Wait", "what", "Yes"}},
		{name: "no terminator", in: "just words", want: []string{"just words"}},
		{name: "only terminators", in: "...!?", want: []string{}},
		{name: "empty", in: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.SplitSentences(tt.in))
		})
	}
}

func TestLatinWords(t *testing.T) {
	assert.Equal(t,
		[]string{"el", "niño", "comió", "pingüino", "x"},
		text.LatinWords("El NIÑO comió 3 pingüino-x"))
}

func TestLatinWords_NormalizesDecomposedAccents(t *testing.T) {
	decomposed := "cancio\u0301n"
	assert.Equal(t, []string{"canción"}, text.LatinWords(decomposed))
}

func TestASCIIWords(t *testing.T) {
	assert.Equal(t, []string{"Hello", "world", "x"}, text.ASCIIWords("Hello, world 42 x"))
}

func TestStopWords(t *testing.T) {
	assert.True(t, text.IsEnglishStopWord("the"))
	assert.True(t, text.IsSpanishStopWord("para"))
	assert.True(t, text.IsStopWord("también"))
	assert.False(t, text.IsStopWord("harbor"))
	assert.False(t, text.IsEnglishStopWord("para"))
}
