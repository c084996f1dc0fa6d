package literary

import "literary-analysis/internal/domain/entity"

// translator renders labels in the requested output language. English is
// the identity.
type translator struct {
	disclaimer  string
	rationale   string
	movements   map[string]string
	confidences map[string]string
	types       map[string]string
}

var englishTranslator = translator{
	disclaimer: "This analysis is probabilistic and interpretive in nature. " +
		"The identified movements, influences, and styles are suggestions based on " +
		"computational text analysis and should not be considered definitive literary criticism. " +
		"Human expert analysis may yield different interpretations.",
	rationale: "Detected through thematic and stylistic elements characteristic of",
}

var spanishTranslator = translator{
	disclaimer: "Este análisis es de naturaleza probabilística e interpretativa. " +
		"Los movimientos, influencias y estilos identificados son sugerencias basadas en " +
		"análisis computacional de texto y no deben considerarse crítica literaria definitiva. " +
		"El análisis de expertos humanos puede producir interpretaciones diferentes.",
	rationale: "Detectado a través de elementos temáticos y estilísticos característicos de",
	movements: map[string]string{
		"Romanticism":        "Romanticismo",
		"Realism":            "Realismo",
		"Modernism":          "Modernismo",
		"Postmodernism":      "Posmodernismo",
		"Symbolism":          "Simbolismo",
		"Naturalism":         "Naturalismo",
		"Surrealism":         "Surrealismo",
		"Classicism":         "Clasicismo",
		"Expressionism":      "Expresionismo",
		"Existentialism":     "Existencialismo",
		"Contemporary/Mixed": "Contemporáneo/Mixto",
		"Contemporary":       "Contemporáneo",
	},
	confidences: map[string]string{
		"high":   "alta",
		"medium": "media",
		"low":    "baja",
	},
	types: map[string]string{
		"author":     "autor",
		"philosophy": "filosofía",
		"school":     "escuela",
		"historical": "histórico",
		"cultural":   "cultural",
	},
}

func translatorFor(lang string) translator {
	if lang == entity.LanguageSpanish {
		return spanishTranslator
	}
	return englishTranslator
}

// lookup returns m[key], or key itself when m has no entry. Names from a
// custom tables file pass through untranslated.
func lookup(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

func (t translator) movement(name string) string { return lookup(t.movements, name) }
func (t translator) confidence(level string) string { return lookup(t.confidences, level) }
func (t translator) influenceType(kind string) string { return lookup(t.types, kind) }
