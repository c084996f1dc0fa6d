package text

// englishStopWords is the common English function word list used by the
// keyword extractor.
var englishStopWords = wordSet(`a about above after again against all am an and any are as at be because
been before being below between both but by can could did do does doing down during each
few for from further had has have having he her here hers herself him himself his how i if
in into is it its itself just me more most my myself no nor not now of off on once only or
other our ours ourselves out over own same she should so some such than that the their
theirs them themselves then there these they this those through to too under until up very
was we were what when where which while who whom why will with would you your yours yourself
yourselves also get got may might must shall upon us one two three`)

// spanishStopWords covers articles, pronouns, prepositions and the most
// frequent auxiliary forms.
var spanishStopWords = wordSet(`a al algo algunas algunos ante antes como con contra cual cuando de del desde
donde durante e el ella ellas ellos en entre era eran es esa esas ese eso esos esta estaba
estado estar estas este esto estos fue fueron ha habia han hasta hay la las le les lo los mas
me mi mis mucho muy nada ni no nos nosotros o otra otras otro otros para pero poco por porque
que quien se sea ser si sido sin sobre su sus también tambien te tiene tienen todo todos tu tus
un una uno unos usted vosotros y ya yo él más qué cómo está están había sí sólo solo cada
hacer hace puede pueden entonces aunque mientras`)

func wordSet(list string) map[string]struct{} {
	set := make(map[string]struct{})
	start := -1
	for i, r := range list + " " {
		if r == ' ' || r == '\n' || r == '\t' {
			if start >= 0 {
				set[list[start:i]] = struct{}{}
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	return set
}

// IsEnglishStopWord reports whether w (lowercase) is an English stop word.
func IsEnglishStopWord(w string) bool {
	_, ok := englishStopWords[w]
	return ok
}

// IsSpanishStopWord reports whether w (lowercase) is a Spanish stop word.
func IsSpanishStopWord(w string) bool {
	_, ok := spanishStopWords[w]
	return ok
}

// IsStopWord reports whether w is a stop word in either language.
func IsStopWord(w string) bool {
	return IsEnglishStopWord(w) || IsSpanishStopWord(w)
}
