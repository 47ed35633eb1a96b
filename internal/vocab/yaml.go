package vocab

import (
	"fmt"
	"io"
	"os"

	"github.com/revyh/glossify/internal/cefr"
	"gopkg.in/yaml.v3"
)

// wordListFile is the on-disk word list format:
//
//	en:
//	  hello: A1
//	  ubiquitous: C2
//	de:
//	  allgegenwärtig: C2
type wordListFile map[string]map[string]cefr.Level

// LoadYAML reads a word list file into an in-memory vocabulary.
func LoadYAML(path string) (*MapLookup, error) {
	f, err := os.Open(path) //nolint:gosec // G304: user-supplied vocabulary path
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadYAML(f)
}

// ReadYAML parses a word list from r.
func ReadYAML(r io.Reader) (*MapLookup, error) {
	var file wordListFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse word list: %w", err)
	}

	m := NewMapLookup()
	for lang, words := range file {
		for word, lvl := range words {
			if !lvl.Valid() {
				return nil, fmt.Errorf("word %q (%s): invalid level", word, lang)
			}
			m.Add(Entry{Word: word, Language: lang, Level: lvl})
		}
	}
	return m, nil
}

// WriteYAML writes entries in the word list format.
func WriteYAML(w io.Writer, entries []Entry) error {
	file := make(wordListFile)
	for _, e := range entries {
		lang := BaseLanguage(e.Language)
		if file[lang] == nil {
			file[lang] = make(map[string]cefr.Level)
		}
		file[lang][e.Word] = e.Level
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return err
	}
	return enc.Close()
}
