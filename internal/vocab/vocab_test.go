package vocab

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/revyh/glossify/internal/cefr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer("")
	tests := []struct {
		in, want string
	}{
		{"Hello,", "hello"},
		{"(Ubiquitous).", "ubiquitous"},
		{"“Quoted”", "quoted"},
		{"'tis", "tis"},
		{"don't", "don't"},
		{"Café", "café"},
		{"2024", ""},
		{"...", ""},
		{"ÜBER!", "über"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeCustomStrip(t *testing.T) {
	n := NewNormalizer("*")
	assert.Equal(t, "word,", n.Normalize("*Word,*"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Tokenize(" a\tb\n c "))
	assert.Empty(t, Tokenize("   "))
}

func TestBaseLanguage(t *testing.T) {
	assert.Equal(t, "en", BaseLanguage("en-GB"))
	assert.Equal(t, "en", BaseLanguage("EN"))
	assert.Equal(t, "de", BaseLanguage(" de "))
	assert.Equal(t, "???", BaseLanguage("???"))
	require.NoError(t, ValidateLanguage("fr"))
	require.Error(t, ValidateLanguage("e!"))
}

func TestMapLookup(t *testing.T) {
	m := Builtin()
	assert.Equal(t, 8, m.Len())

	lvl, ok, err := m.Level(context.Background(), "ubiquitous", "en")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cefr.C2, lvl)

	lvl, ok, err = m.Level(context.Background(), "hello", "en-US")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cefr.A1, lvl)

	_, ok, err = m.Level(context.Background(), "ubiquitous", "de")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = m.Level(context.Background(), "zebra", "en")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMapLookupEntries(t *testing.T) {
	m := NewMapLookup(
		Entry{Word: "Zebra", Language: "en", Level: cefr.A2},
		Entry{Word: "apfel", Language: "de", Level: cefr.A1},
		Entry{Word: "apple", Language: "EN", Level: cefr.A1},
	)
	assert.Equal(t, []Entry{
		{Word: "apfel", Language: "de", Level: cefr.A1},
		{Word: "apple", Language: "en", Level: cefr.A1},
		{Word: "zebra", Language: "en", Level: cefr.A2},
	}, m.Entries())
}

func TestMapLookupNormalizesEntries(t *testing.T) {
	nfd := "Ma\u0308dchen" // "Mädchen" with a combining diaeresis
	m := NewMapLookup(Entry{Word: nfd, Language: "de", Level: cefr.A2})

	norm := NewNormalizer("")
	key := norm.Normalize("Mädchen,")
	require.Equal(t, "mädchen", key)

	lvl, ok, err := m.Level(context.Background(), key, "de")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cefr.A2, lvl)
	assert.Equal(t, "mädchen", EntryKey(nfd))
	assert.Equal(t, "42", EntryKey(" 42 "))
}

func TestMapLookupCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Builtin().Level(ctx, "hello", "en")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text, want string
	}{
		{"", ""},
		{"12345 !!!", ""},
		{"The quick brown fox jumps over the lazy dog", "en"},
		{"Über die Brücke läuft ein Mädchen, weiß ich", "de"},
		{"Le garçon à la fenêtre très élevée ça", "fr"},
		{"El niño pequeño está en la montaña", "es"},
		{"Привет мир, как дела", "ru"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.text))
		})
	}
}

func TestReadYAML(t *testing.T) {
	src := `
en:
  hello: A1
  ubiquitous: c2
de:
  allgegenwärtig: C2
`
	m, err := ReadYAML(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	lvl, ok, err := m.Level(context.Background(), "allgegenwärtig", "de")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cefr.C2, lvl)

	lvl, _, _ = m.Level(context.Background(), "ubiquitous", "en")
	assert.Equal(t, cefr.C2, lvl)
}

func TestReadYAMLErrors(t *testing.T) {
	_, err := ReadYAML(strings.NewReader("en:\n  hello: Z9\n"))
	require.Error(t, err)

	_, err = ReadYAML(strings.NewReader("- not\n- a map\n"))
	require.Error(t, err)

	m, err := ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteYAML(&b, []Entry{
		{Word: "hello", Language: "en", Level: cefr.A1},
		{Word: "algorithm", Language: "en", Level: cefr.B2},
	}))
	assert.Contains(t, b.String(), "algorithm: B2")

	m, err := ReadYAML(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}

func TestSQLiteLookup(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vocab.db")

	db, err := OpenSQLite(ctx, path, true)
	require.NoError(t, err)
	require.NoError(t, db.AddWordLevel(ctx, Entry{Word: "ubiquitous", Language: "en", Level: cefr.C2}))
	require.NoError(t, db.Import(ctx, []Entry{
		{Word: "hello", Language: "en", Level: cefr.A1},
		{Word: "hallo", Language: "de", Level: cefr.A1},
	}))
	require.Error(t, db.AddWordLevel(ctx, Entry{Word: "bad", Language: "en", Level: cefr.Unknown}))

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, db.Close())

	ro, err := OpenSQLite(ctx, path, false)
	require.NoError(t, err)
	defer func() { _ = ro.Close() }()

	lvl, ok, err := ro.Level(ctx, "ubiquitous", "en-GB")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cefr.C2, lvl)

	_, ok, err = ro.Level(ctx, "ubiquitous", "de")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteLookupNormalizesEntries(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "vocab.db"), true)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.Import(ctx, []Entry{{Word: "U\u0308ber", Language: "de", Level: cefr.A1}}))
	require.NoError(t, db.AddWordLevel(ctx, Entry{Word: "Bru\u0308cke", Language: "de", Level: cefr.A2}))

	for word, want := range map[string]cefr.Level{"über": cefr.A1, "brücke": cefr.A2} {
		lvl, ok, err := db.Level(ctx, word, "de")
		require.NoError(t, err)
		assert.True(t, ok, word)
		assert.Equal(t, want, lvl, word)
	}
}

func TestOpenSQLiteMissingFile(t *testing.T) {
	_, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "missing.db"), false)
	require.Error(t, err)
}

type countingLookup struct {
	calls atomic.Int64
	delay time.Duration
	err   error
}

func (c *countingLookup) Level(ctx context.Context, word, lang string) (cefr.Level, bool, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return cefr.Unknown, false, c.err
	}
	if word == "missing" {
		return cefr.Unknown, false, nil
	}
	return cefr.B2, true, nil
}

func TestCachedLookup(t *testing.T) {
	backend := &countingLookup{}
	c := NewCachedLookup(backend, time.Minute)
	defer c.Close()
	ctx := context.Background()

	for range 3 {
		lvl, ok, err := c.Level(ctx, "algorithm", "en")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, cefr.B2, lvl)
	}
	for range 2 {
		_, ok, err := c.Level(ctx, "missing", "en")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	// Same word, different language is a different key.
	_, _, err := c.Level(ctx, "algorithm", "de")
	require.NoError(t, err)

	assert.EqualValues(t, 3, backend.calls.Load())
	hits, misses := c.Stats()
	assert.EqualValues(t, 3, hits)
	assert.EqualValues(t, 3, misses)
}

func TestCachedLookupSharesConcurrentMisses(t *testing.T) {
	backend := &countingLookup{delay: 50 * time.Millisecond}
	c := NewCachedLookup(backend, 0)
	defer c.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Level(context.Background(), "sophisticated", "en")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, backend.calls.Load(), int64(2))
}

func TestCachedLookupDoesNotCacheErrors(t *testing.T) {
	backend := &countingLookup{err: errors.New("db down")}
	c := NewCachedLookup(backend, time.Minute)
	defer c.Close()

	_, _, err := c.Level(context.Background(), "x", "en")
	require.Error(t, err)
	_, _, err = c.Level(context.Background(), "x", "en")
	require.Error(t, err)
	assert.EqualValues(t, 2, backend.calls.Load())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src, err := Open(ctx, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "builtin", src.Kind)
	require.NoError(t, src.Close())

	yamlPath := filepath.Join(dir, "words.yaml")
	writeFile(t, yamlPath, "en:\n  hello: A1\n")
	src, err = Open(ctx, yamlPath, 0)
	require.NoError(t, err)
	assert.Equal(t, "yaml", src.Kind)
	require.NoError(t, src.Close())

	dbPath := filepath.Join(dir, "words.db")
	db, err := OpenSQLite(ctx, dbPath, true)
	require.NoError(t, err)
	require.NoError(t, db.AddWordLevel(ctx, Entry{Word: "hello", Language: "en", Level: cefr.A1}))
	require.NoError(t, db.Close())

	src, err = Open(ctx, dbPath, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", src.Kind)
	lvl, ok, err := src.Lookup.Level(ctx, "hello", "en")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cefr.A1, lvl)
	require.NoError(t, src.Close())

	_, err = Open(ctx, filepath.Join(dir, "words.csv"), 0)
	require.Error(t, err)
}
