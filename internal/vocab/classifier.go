package vocab

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/revyh/glossify/internal/cefr"
	"github.com/revyh/glossify/internal/document"
	"github.com/revyh/glossify/internal/failure"
	"golang.org/x/sync/errgroup"
)

// UnknownPolicy decides what happens to words missing from the vocabulary.
type UnknownPolicy string

const (
	// UnknownAccept treats unknown words as known and never flags them.
	UnknownAccept UnknownPolicy = "accept"
	// UnknownFlag flags unknown words with level cefr.Unknown.
	UnknownFlag UnknownPolicy = "flag"
)

// ParseUnknownPolicy validates a policy name.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch UnknownPolicy(s) {
	case UnknownAccept, UnknownFlag:
		return UnknownPolicy(s), nil
	case "":
		return UnknownAccept, nil
	default:
		return "", fmt.Errorf("invalid unknown-word policy %q (must be accept or flag)", s)
	}
}

// FlaggedWord is a distinct normalized word above the learner's threshold.
type FlaggedWord struct {
	Normalized  string                    `json:"normalized"`
	Level       cefr.Level                `json:"level"`
	Occurrences []document.WordOccurrence `json:"occurrences"`
}

// Stats summarizes one classification pass.
type Stats struct {
	Tokens      int `json:"tokens"`
	Distinct    int `json:"distinct"`
	Unknown     int `json:"unknown"`
	Flagged     int `json:"flagged"`
	Approximate int `json:"approximate"`
}

// ClassifierConfig configures a Classifier.
type ClassifierConfig struct {
	Unknown    UnknownPolicy
	StripChars string
	Workers    int // concurrent lookups (0 = runtime.NumCPU())
}

// Classifier flags words above a proficiency threshold.
type Classifier struct {
	lookup Lookup
	cfg    ClassifierConfig
	logger *slog.Logger
}

// NewClassifier creates a classifier over lookup. A nil logger uses slog.Default().
func NewClassifier(lookup Lookup, cfg ClassifierConfig, logger *slog.Logger) *Classifier {
	if cfg.Unknown == "" {
		cfg.Unknown = UnknownAccept
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{lookup: lookup, cfg: cfg, logger: logger}
}

// Occurrences tokenizes and normalizes every block of doc. The result maps
// each normalized word to its occurrences in source order, plus the words in
// first-seen order.
func (c *Classifier) Occurrences(doc *document.Document) (map[string][]document.WordOccurrence, []string, Stats) {
	norm := NewNormalizer(c.cfg.StripChars)
	byWord := make(map[string][]document.WordOccurrence)
	var order []string
	var stats Stats

	for pi := range doc.Pages {
		page := &doc.Pages[pi]
		for bi := range page.Blocks {
			block := &page.Blocks[bi]
			idx := 0
			for _, wb := range block.Words {
				tokens := Tokenize(wb.Text)
				for _, tok := range tokens {
					stats.Tokens++
					key := norm.Normalize(tok)
					if key == "" {
						idx++
						continue
					}
					occ := document.WordOccurrence{
						Normalized:  key,
						Raw:         tok,
						PageIndex:   page.Index,
						Rect:        wb.Rect,
						Approximate: wb.Approximate || len(tokens) > 1,
						Block:       block,
						Index:       idx,
					}
					if occ.Approximate {
						stats.Approximate++
					}
					if _, seen := byWord[key]; !seen {
						order = append(order, key)
					}
					byWord[key] = append(byWord[key], occ)
					idx++
				}
			}
		}
	}
	stats.Distinct = len(order)
	return byWord, order, stats
}

// Classify returns the flagged words of doc in first-seen order. Each distinct
// word is looked up once. A lookup backend failure aborts with a LookupError.
func (c *Classifier) Classify(ctx context.Context, doc *document.Document, lang string, threshold cefr.Level) ([]FlaggedWord, Stats, error) {
	if !threshold.Valid() {
		return nil, Stats{}, failure.Input("classify", fmt.Sprintf("invalid threshold %v", threshold), nil)
	}

	byWord, order, stats := c.Occurrences(doc)

	type result struct {
		level cefr.Level
		known bool
	}
	results := make([]result, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i, word := range order {
		g.Go(func() error {
			lvl, ok, err := c.lookup.Level(gctx, word, lang)
			if err != nil {
				return fmt.Errorf("lookup %q: %w", word, err)
			}
			results[i] = result{level: lvl, known: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, stats, failure.Cancelled("classify", ctx.Err())
		}
		return nil, stats, failure.Lookup("classify", "vocabulary lookup failed", err)
	}

	var flagged []FlaggedWord
	for i, word := range order {
		r := results[i]
		switch {
		case !r.known:
			stats.Unknown++
			if c.cfg.Unknown != UnknownFlag {
				continue
			}
			r.level = cefr.Unknown
		case !r.level.Above(threshold):
			continue
		}
		flagged = append(flagged, FlaggedWord{
			Normalized:  word,
			Level:       r.level,
			Occurrences: byWord[word],
		})
	}
	stats.Flagged = len(flagged)

	c.logger.Debug("classified vocabulary",
		"language", lang,
		"threshold", threshold.String(),
		"tokens", stats.Tokens,
		"distinct", stats.Distinct,
		"unknown", stats.Unknown,
		"flagged", stats.Flagged)
	return flagged, stats, nil
}
