package vocab

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultStripChars is the punctuation removed from both ends of a token.
const DefaultStripChars = ".,!?;:()[]{}\"'“”‘’«»…"

// Normalizer turns raw tokens into lookup keys.
type Normalizer struct {
	strip string
	lower cases.Caser
}

// NewNormalizer creates a normalizer. An empty strip set uses DefaultStripChars.
func NewNormalizer(strip string) *Normalizer {
	if strip == "" {
		strip = DefaultStripChars
	}
	return &Normalizer{strip: strip, lower: cases.Lower(language.Und)}
}

// Normalize applies NFC, lowercasing and punctuation stripping. It returns ""
// for tokens that contain no letters after stripping.
//
// cases.Caser is stateful, so Normalize must not be called concurrently on
// the same Normalizer.
func (n *Normalizer) Normalize(token string) string {
	s := norm.NFC.String(strings.TrimSpace(token))
	s = n.lower.String(s)
	s = strings.Trim(s, n.strip)
	if strings.IndexFunc(s, unicode.IsLetter) < 0 {
		return ""
	}
	return s
}

// Tokenize splits text on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(text)
}
