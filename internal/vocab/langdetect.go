package vocab

import "unicode"

// diacriticHints maps lowercase letters that are characteristic of one
// language to its code.
var diacriticHints = map[rune]string{
	'ä': "de", 'ö': "de", 'ü': "de", 'ß': "de",
	'è': "fr", 'ê': "fr", 'à': "fr", 'ù': "fr", 'ç': "fr",
	'á': "es", 'í': "es", 'ó': "es", 'ú': "es", 'ñ': "es",
}

// DetectLanguage guesses the base language code of text from its script and
// diacritics. It returns "" when there is no clear signal.
func DetectLanguage(text string) string {
	var letters, ascii, cyrillic int
	votes := make(map[string]int, 3)

	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case r <= unicode.MaxASCII:
			ascii++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		}
		if lang, ok := diacriticHints[unicode.ToLower(r)]; ok {
			votes[lang]++
		}
	}

	switch {
	case letters == 0:
		return ""
	case cyrillic*2 > letters:
		return "ru"
	}
	if lang := strictMajority(votes); lang != "" {
		return lang
	}
	// Plain ASCII prose.
	if ascii*5 > letters*4 {
		return "en"
	}
	return ""
}

// strictMajority returns the key with the single highest count, or "" on a tie.
func strictMajority(votes map[string]int) string {
	best, bestN, tied := "", 0, false
	for lang, n := range votes {
		switch {
		case n > bestN:
			best, bestN, tied = lang, n, false
		case n == bestN:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best
}
