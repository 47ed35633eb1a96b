// Package vocab classifies document words against a CEFR vocabulary.
package vocab

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/revyh/glossify/internal/cefr"
	"golang.org/x/text/language"
)

// Lookup resolves the CEFR level of a normalized word. A word missing from
// the vocabulary returns ok == false and a nil error; err is reserved for
// backend failures. Implementations must be safe for concurrent use.
type Lookup interface {
	Level(ctx context.Context, word, lang string) (level cefr.Level, ok bool, err error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, word, lang string) (cefr.Level, bool, error)

// Level implements Lookup.
func (f LookupFunc) Level(ctx context.Context, word, lang string) (cefr.Level, bool, error) {
	return f(ctx, word, lang)
}

// Entry is one vocabulary record.
type Entry struct {
	Word     string     `json:"word" yaml:"word"`
	Language string     `json:"language" yaml:"language"`
	Level    cefr.Level `json:"level" yaml:"level"`
}

// MapLookup is an in-memory vocabulary keyed by language then word.
type MapLookup struct {
	mu      sync.RWMutex
	entries map[string]map[string]cefr.Level
}

// NewMapLookup builds an in-memory vocabulary from entries.
func NewMapLookup(entries ...Entry) *MapLookup {
	m := &MapLookup{entries: make(map[string]map[string]cefr.Level)}
	for _, e := range entries {
		m.Add(e)
	}
	return m
}

// Add inserts or replaces an entry.
func (m *MapLookup) Add(e Entry) {
	lang := BaseLanguage(e.Language)
	word := EntryKey(e.Word)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[lang] == nil {
		m.entries[lang] = make(map[string]cefr.Level)
	}
	m.entries[lang][word] = e.Level
}

// Len returns the number of entries across languages.
func (m *MapLookup) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, words := range m.entries {
		n += len(words)
	}
	return n
}

// Entries returns all entries sorted by language then word.
func (m *MapLookup) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Entry
	for lang, words := range m.entries {
		for word, lvl := range words {
			out = append(out, Entry{Word: word, Language: lang, Level: lvl})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Language != out[j].Language {
			return out[i].Language < out[j].Language
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// Level implements Lookup.
func (m *MapLookup) Level(ctx context.Context, word, lang string) (cefr.Level, bool, error) {
	if err := ctx.Err(); err != nil {
		return cefr.Unknown, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	lvl, ok := m.entries[BaseLanguage(lang)][word]
	return lvl, ok, nil
}

// Builtin returns the small English vocabulary shipped with the binary. It is
// meant for demos and tests; real runs should supply a corpus file.
func Builtin() *MapLookup {
	return NewMapLookup(
		Entry{Word: "hello", Language: "en", Level: cefr.A1},
		Entry{Word: "goodbye", Language: "en", Level: cefr.A1},
		Entry{Word: "computer", Language: "en", Level: cefr.A2},
		Entry{Word: "consequently", Language: "en", Level: cefr.B1},
		Entry{Word: "algorithm", Language: "en", Level: cefr.B2},
		Entry{Word: "implementation", Language: "en", Level: cefr.B2},
		Entry{Word: "sophisticated", Language: "en", Level: cefr.C1},
		Entry{Word: "ubiquitous", Language: "en", Level: cefr.C2},
	)
}

// EntryKey normalizes a vocabulary word the way the classifier normalizes
// document tokens, so lists written in NFD or mixed case still match. Words
// without letters are only trimmed and lowercased.
func EntryKey(word string) string {
	if key := NewNormalizer("").Normalize(word); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(word))
}

// BaseLanguage reduces a language tag to its lowercase base code, so "en-GB"
// and "EN" both map to "en". Unparseable input is lowercased as is.
func BaseLanguage(code string) string {
	code = strings.TrimSpace(code)
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

// ValidateLanguage reports whether code is a well-formed language tag.
func ValidateLanguage(code string) error {
	if _, err := language.Parse(strings.TrimSpace(code)); err != nil {
		return fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return nil
}
