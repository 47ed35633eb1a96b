package pdf

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/dslipak/pdf"
	"github.com/revyh/glossify/internal/document"
)

const (
	ascentRatio  = 0.8
	descentRatio = 0.2
)

// LayoutConfig controls how glyph runs are grouped into words and lines.
type LayoutConfig struct {
	RowTolerance  float64 // max baseline distance, in points, for glyphs on one line
	WordGapFactor float64 // gaps wider than this fraction of the font size split words
}

// DefaultLayoutConfig returns the grouping defaults.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		RowTolerance:  2.0,
		WordGapFactor: 0.3,
	}
}

// pageGeometry converts PDF user space (origin bottom-left) to page space.
type pageGeometry struct {
	originX, top float64
}

func (g pageGeometry) rect(t pdf.Text) document.Rect {
	size := math.Abs(t.FontSize)
	w := t.W
	if w <= 0 {
		// Fonts without /Widths report zero advance.
		w = 0.5 * size * float64(len([]rune(t.S)))
	}
	x0 := t.X - g.originX
	return document.NewRect(x0, g.top-(t.Y+ascentRatio*size), x0+w, g.top-(t.Y-descentRatio*size))
}

// groupRows buckets glyphs by baseline and returns rows top to bottom, each
// sorted left to right.
func (c LayoutConfig) groupRows(texts []pdf.Text) [][]pdf.Text {
	type rowBucket struct {
		yMin, yMax float64
		texts      []pdf.Text
	}

	var buckets []rowBucket
	for _, t := range texts {
		found := false
		for i := range buckets {
			if t.Y >= buckets[i].yMin-c.RowTolerance && t.Y <= buckets[i].yMax+c.RowTolerance {
				buckets[i].texts = append(buckets[i].texts, t)
				buckets[i].yMin = math.Min(buckets[i].yMin, t.Y)
				buckets[i].yMax = math.Max(buckets[i].yMax, t.Y)
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, rowBucket{yMin: t.Y, yMax: t.Y, texts: []pdf.Text{t}})
		}
	}

	// Higher baseline first.
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].yMax > buckets[j].yMax
	})

	rows := make([][]pdf.Text, len(buckets))
	for i, b := range buckets {
		row := b.texts
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		rows[i] = row
	}
	return rows
}

// wordBuilder accumulates glyphs into one word.
type wordBuilder struct {
	text     strings.Builder
	rect     document.Rect
	fontSize float64
	active   bool
}

func (w *wordBuilder) start(t pdf.Text, r document.Rect) {
	w.text.Reset()
	w.text.WriteString(t.S)
	w.rect = r
	w.fontSize = math.Abs(t.FontSize)
	w.active = true
}

func (w *wordBuilder) extend(t pdf.Text, r document.Rect) {
	w.text.WriteString(t.S)
	w.rect = w.rect.Union(r)
}

// lineToBlock merges one row of glyphs into a block with word boxes.
func (c LayoutConfig) lineToBlock(row []pdf.Text, geo pageGeometry, pageIndex int) (document.TextBlock, bool) {
	var (
		words []document.WordBox
		cur   wordBuilder
		maxFS float64
	)

	flush := func() {
		if cur.active {
			words = append(words, document.WordBox{Text: cur.text.String(), Rect: cur.rect})
			cur.active = false
		}
	}

	for _, t := range row {
		maxFS = math.Max(maxFS, math.Abs(t.FontSize))
		if strings.TrimSpace(t.S) == "" {
			flush()
			continue
		}
		r := geo.rect(t)

		if strings.IndexFunc(strings.TrimSpace(t.S), unicode.IsSpace) >= 0 {
			// The producer emitted several words in one run; the individual
			// tokens cannot be positioned, so each gets the run rect.
			flush()
			for _, tok := range strings.Fields(t.S) {
				words = append(words, document.WordBox{Text: tok, Rect: r, Approximate: true})
			}
			continue
		}

		if cur.active {
			threshold := c.WordGapFactor * cur.fontSize
			if cur.fontSize == 0 {
				threshold = 3.0
			}
			gap := r.X.Lo - cur.rect.X.Hi
			if gap <= threshold {
				cur.extend(t, r)
				continue
			}
			flush()
		}
		cur.start(t, r)
	}
	flush()

	if len(words) == 0 {
		return document.TextBlock{}, false
	}

	texts := make([]string, len(words))
	rect := words[0].Rect
	for i, w := range words {
		texts[i] = w.Text
		rect = rect.Union(w.Rect)
	}

	return document.TextBlock{
		PageIndex: pageIndex,
		Rect:      rect,
		Text:      strings.Join(texts, " "),
		FontSize:  maxFS,
		Words:     words,
	}, true
}

// buildBlocks turns the glyph runs of one page into line blocks in reading order.
func (c LayoutConfig) buildBlocks(texts []pdf.Text, geo pageGeometry, pageIndex int) []document.TextBlock {
	if len(texts) == 0 {
		return nil
	}
	var blocks []document.TextBlock
	for _, row := range c.groupRows(texts) {
		if b, ok := c.lineToBlock(row, geo, pageIndex); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}
