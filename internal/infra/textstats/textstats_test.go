package textstats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"literary-analysis/internal/domain/entity"
)

func TestCompute_CountsContentWords(t *testing.T) {
	s := Compute("The harbor was quiet. The harbor lights were dim, and the boats slept in the harbor.")

	// harbor x3, quiet, lights, boats, slept ("were" and "dim" are dropped)
	assert.Equal(t, 7, s.WordCount)
	want := []entity.WordFrequency{
		{Word: "harbor", Count: 3},
		{Word: "quiet", Count: 1},
		{Word: "lights", Count: 1},
		{Word: "boats", Count: 1},
		{Word: "slept", Count: 1},
	}
	if diff := cmp.Diff(want, s.TopWords); diff != "" {
		t.Fatalf("top words mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_SpanishAccents(t *testing.T) {
	s := Compute("La canción del niño. Otra canción para el niño pequeño.")
	// "otra" and "para" are stop words
	assert.Equal(t, []entity.WordFrequency{
		{Word: "canción", Count: 2},
		{Word: "niño", Count: 2},
		{Word: "pequeño", Count: 1},
	}, s.TopWords)
}

func TestCompute_TopWordsCapped(t *testing.T) {
	s := Compute("alpha bravo charlie delta echoes foxtrot golfer hotel india juliet kilos limas")
	assert.Len(t, s.TopWords, DefaultTopWords)
	assert.Equal(t, 12, s.WordCount)
	assert.Equal(t, "alpha", s.TopWords[0].Word)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute("")
	assert.Zero(t, s.WordCount)
	assert.Empty(t, s.TopWords)
	assert.Equal(t, "", s.Language)
}

func TestDetectLanguage(t *testing.T) {
	en := "It was the best of times, it was the worst of times, it was the age of wisdom, " +
		"it was the age of foolishness, it was the epoch of belief, it was the epoch of incredulity."
	es := "En un lugar de la Mancha, de cuyo nombre no quiero acordarme, no ha mucho tiempo que " +
		"vivía un hidalgo de los de lanza en astillero, adarga antigua, rocín flaco y galgo corredor. El niño pequeño está jugando en el jardín con su perro " +
		"mientras su madre prepara la comida para toda la familia."

	assert.Equal(t, "en", DetectLanguage(en))
	assert.Equal(t, "es", DetectLanguage(es))
}
