// Package placement positions translations next to the words they translate
// without covering any original text.
package placement

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/revyh/glossify/internal/document"
	"github.com/revyh/glossify/internal/failure"
	"github.com/revyh/glossify/internal/translate"
	"github.com/revyh/glossify/internal/vocab"
)

// Strategy tells how an annotation was placed.
type Strategy string

const (
	StrategyInline   Strategy = "inline"
	StrategyFootnote Strategy = "footnote"
)

// Annotation is a positioned translation.
type Annotation struct {
	PageIndex int           `json:"page_index"`
	Rect      document.Rect `json:"rect"`
	Content   string        `json:"content"`
	Strategy  Strategy      `json:"strategy"`
	Word      string        `json:"word"`
	FontSize  float64       `json:"font_size"`
}

// Config controls annotation geometry. Lengths are in points.
type Config struct {
	FontName         string  `json:"font_name"`
	FontSize         float64 `json:"font_size"`
	LineHeight       float64 `json:"line_height"` // multiple of the font size
	Gap              float64 `json:"gap"`         // space between word and annotation
	ShiftX           float64 `json:"shift_x"`
	MaxAttempts      int     `json:"max_attempts"`
	Margin           float64 `json:"margin"`
	FootnoteFontSize float64 `json:"footnote_font_size"`
	FootnoteBand     float64 `json:"footnote_band"` // reserved height above the bottom margin
}

// DefaultConfig returns the default geometry.
func DefaultConfig() Config {
	return Config{
		FontName:         "Helvetica",
		FontSize:         6,
		LineHeight:       1.2,
		Gap:              0.5,
		ShiftX:           12,
		MaxAttempts:      8,
		Margin:           18,
		FootnoteFontSize: 7,
		FootnoteBand:     48,
	}
}

// Validate checks the geometry for usable values.
func (c Config) Validate() error {
	switch {
	case c.FontSize <= 0:
		return fmt.Errorf("placement font size must be positive, got %v", c.FontSize)
	case c.FootnoteFontSize <= 0:
		return fmt.Errorf("placement footnote font size must be positive, got %v", c.FootnoteFontSize)
	case c.LineHeight < 1:
		return fmt.Errorf("placement line height must be at least 1, got %v", c.LineHeight)
	case c.MaxAttempts < 1:
		return fmt.Errorf("placement max attempts must be at least 1, got %d", c.MaxAttempts)
	case c.Gap < 0 || c.ShiftX < 0 || c.Margin < 0 || c.FootnoteBand < 0:
		return fmt.Errorf("placement gap, shift, margin and footnote band must not be negative")
	}
	return nil
}

// PageResult is the placement outcome of one page.
type PageResult struct {
	PageIndex   int               `json:"page_index"`
	Annotations []Annotation      `json:"annotations"`
	Inline      int               `json:"inline"`
	Footnotes   int               `json:"footnotes"`
	Unplaced    int               `json:"unplaced"`
	Warnings    []failure.Warning `json:"warnings,omitempty"`
}

// Placer computes annotation layouts. It is safe for concurrent use across
// pages.
type Placer struct {
	cfg     Config
	measure Measurer
	logger  *slog.Logger
}

// NewPlacer creates a placer. A nil measurer uses CoreFontMeasurer. A zero
// Config, and any zero size, line height or attempt count, takes the default.
func NewPlacer(cfg Config, measure Measurer, logger *slog.Logger) *Placer {
	d := DefaultConfig()
	if cfg == (Config{}) {
		cfg = d
	}
	if cfg.FontName == "" {
		cfg.FontName = d.FontName
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = d.FontSize
	}
	if cfg.FootnoteFontSize <= 0 {
		cfg.FootnoteFontSize = d.FootnoteFontSize
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = d.LineHeight
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = d.MaxAttempts
	}
	if measure == nil {
		measure = CoreFontMeasurer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Placer{cfg: cfg, measure: measure, logger: logger}
}

// Config returns the placer geometry.
func (p *Placer) Config() Config {
	return p.cfg
}

// PlacePage places one annotation per translated occurrence on page. Inline
// placement is greedy in source order; occurrences that find no free slot go
// to the page's footnote area.
func (p *Placer) PlacePage(page *document.Page, occurrences []document.WordOccurrence, translations map[string]translate.TranslationPair) PageResult {
	return p.place(page, occurrences, translations, false)
}

// PlaceFootnotes places every occurrence of page as a footnote. It is the
// degraded layout for pages whose inline placement failed.
func (p *Placer) PlaceFootnotes(page *document.Page, occurrences []document.WordOccurrence, translations map[string]translate.TranslationPair) PageResult {
	return p.place(page, occurrences, translations, true)
}

// Place lays out every page of doc sequentially.
func (p *Placer) Place(ctx context.Context, doc *document.Document, flagged []vocab.FlaggedWord, translations map[string]translate.TranslationPair) ([]PageResult, error) {
	byPage := OccurrencesByPage(flagged)
	results := make([]PageResult, 0, len(doc.Pages))
	for i := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, failure.Cancelled("place", err)
		}
		page := &doc.Pages[i]
		results = append(results, p.PlacePage(page, byPage[page.Index], translations))
	}
	return results, nil
}

// OccurrencesByPage groups the occurrences of all flagged words by page.
func OccurrencesByPage(flagged []vocab.FlaggedWord) map[int][]document.WordOccurrence {
	byPage := make(map[int][]document.WordOccurrence)
	for _, f := range flagged {
		for _, occ := range f.Occurrences {
			byPage[occ.PageIndex] = append(byPage[occ.PageIndex], occ)
		}
	}
	return byPage
}

func (p *Placer) place(page *document.Page, occurrences []document.WordOccurrence, translations map[string]translate.TranslationPair, footnotesOnly bool) PageResult {
	res := PageResult{PageIndex: page.Index}

	ordered := make([]document.WordOccurrence, len(occurrences))
	copy(ordered, occurrences)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	obstacles := make([]document.Rect, 0, len(page.Blocks))
	for _, b := range page.Blocks {
		obstacles = append(obstacles, b.Rect)
	}

	var pending []document.WordOccurrence
	for _, occ := range ordered {
		pair, ok := translations[occ.Normalized]
		if !ok || pair.Translated == "" {
			continue
		}
		if footnotesOnly {
			pending = append(pending, occ)
			continue
		}
		rect, ok := p.inlineSlot(page, occ.Rect, pair.Translated, obstacles, res.Annotations)
		if !ok {
			pending = append(pending, occ)
			continue
		}
		res.Annotations = append(res.Annotations, Annotation{
			PageIndex: page.Index,
			Rect:      rect,
			Content:   pair.Translated,
			Strategy:  StrategyInline,
			Word:      occ.Normalized,
			FontSize:  p.cfg.FontSize,
		})
		res.Inline++
	}

	for _, occ := range pending {
		pair := translations[occ.Normalized]
		content := fmt.Sprintf("%s: %s", occ.Normalized, pair.Translated)
		rect, ok := p.footnoteSlot(page, content, obstacles, res.Annotations)
		if !ok {
			res.Unplaced++
			res.Warnings = append(res.Warnings, failure.Warning{
				Kind:    failure.KindAnnotation,
				Page:    page.Index + 1,
				Word:    occ.Normalized,
				Message: "no room left for annotation",
			})
			continue
		}
		res.Annotations = append(res.Annotations, Annotation{
			PageIndex: page.Index,
			Rect:      rect,
			Content:   content,
			Strategy:  StrategyFootnote,
			Word:      occ.Normalized,
			FontSize:  p.cfg.FootnoteFontSize,
		})
		res.Footnotes++
	}

	if res.Footnotes > 0 {
		res.Warnings = append(res.Warnings, failure.Warning{
			Kind:    failure.KindAnnotation,
			Page:    page.Index + 1,
			Message: fmt.Sprintf("%d annotation(s) placed as footnotes", res.Footnotes),
		})
	}
	if res.Footnotes > 0 || res.Unplaced > 0 {
		p.logger.Debug("page used fallback placement",
			"page", page.Index+1,
			"inline", res.Inline,
			"footnotes", res.Footnotes,
			"unplaced", res.Unplaced)
	}
	return res
}

// contentArea is where inline annotations may go: inside the margins and
// above the footnote band.
func (p *Placer) contentArea(page *document.Page) document.Rect {
	return document.NewRect(
		p.cfg.Margin,
		p.cfg.Margin,
		page.Width-p.cfg.Margin,
		page.Height-p.cfg.Margin-p.cfg.FootnoteBand,
	)
}

// inlineSlot tries candidates below the word, alternately shifting right and
// down one line, and returns the first that fits and collides with nothing.
func (p *Placer) inlineSlot(page *document.Page, word document.Rect, text string, obstacles []document.Rect, placed []Annotation) (document.Rect, bool) {
	area := p.contentArea(page)
	w := p.measure.Width(text, p.cfg.FontName, p.cfg.FontSize)
	h := p.cfg.FontSize * p.cfg.LineHeight

	for i := 0; i < p.cfg.MaxAttempts; i++ {
		right := float64((i + 1) / 2)
		down := float64(i / 2)
		cand := document.RectXYWH(
			word.X.Lo+right*p.cfg.ShiftX,
			word.Y.Hi+p.cfg.Gap+down*h,
			w, h,
		)
		if !area.Contains(cand) {
			continue
		}
		if collides(cand, obstacles) || collidesAnnotation(cand, placed) {
			continue
		}
		return cand, true
	}
	return document.Rect{}, false
}

// footnoteBand is the reserved strip above the bottom margin.
func (p *Placer) footnoteBand(page *document.Page) document.Rect {
	return document.NewRect(
		p.cfg.Margin,
		page.Height-p.cfg.Margin-p.cfg.FootnoteBand,
		page.Width-p.cfg.Margin,
		page.Height-p.cfg.Margin,
	)
}

// footnoteSlot fills rows upward from the bottom margin, left to right,
// skipping past any annotation already in the way. Inside the footnote band
// body text is ignored; above it a footnote must clear every text block.
func (p *Placer) footnoteSlot(page *document.Page, text string, obstacles []document.Rect, placed []Annotation) (document.Rect, bool) {
	w := p.measure.Width(text, p.cfg.FontName, p.cfg.FootnoteFontSize)
	h := p.cfg.FootnoteFontSize * p.cfg.LineHeight
	left, right := p.cfg.Margin, page.Width-p.cfg.Margin
	top, bottom := p.cfg.Margin, page.Height-p.cfg.Margin
	band := p.footnoteBand(page)

	if w > right-left || h <= 0 {
		return document.Rect{}, false
	}
	for y1 := bottom; y1-h >= top; y1 -= h {
		x := left
		for x+w <= right {
			cand := document.RectXYWH(x, y1-h, w, h)
			hit, ok := firstCollision(cand, placed)
			if !ok && !band.Contains(cand) {
				hit, ok = firstOverlap(cand, obstacles)
			}
			if !ok {
				return cand, true
			}
			x = hit.X.Hi
		}
	}
	return document.Rect{}, false
}

func collides(r document.Rect, others []document.Rect) bool {
	_, hit := firstOverlap(r, others)
	return hit
}

func firstOverlap(r document.Rect, others []document.Rect) (document.Rect, bool) {
	for _, o := range others {
		if document.Overlaps(r, o) {
			return o, true
		}
	}
	return document.Rect{}, false
}

func collidesAnnotation(r document.Rect, placed []Annotation) bool {
	_, hit := firstCollision(r, placed)
	return hit
}

func firstCollision(r document.Rect, placed []Annotation) (document.Rect, bool) {
	for _, a := range placed {
		if document.Overlaps(r, a.Rect) {
			return a.Rect, true
		}
	}
	return document.Rect{}, false
}
