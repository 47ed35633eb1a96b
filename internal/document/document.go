// Package document holds the positioned-text model shared by extraction,
// classification and placement.
//
// Coordinates are PDF points with the origin at the top-left corner of the
// page and y growing downward.
package document

import (
	"fmt"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// Rect is an axis-aligned box in page space.
type Rect = r2.Rect

// NewRect builds a rect from two corners in any order.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return r2.RectFromPoints(r2.Point{X: x0, Y: y0}, r2.Point{X: x1, Y: y1})
}

// RectXYWH builds a rect from its top-left corner and size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{X: r1.Interval{Lo: x, Hi: x + w}, Y: r1.Interval{Lo: y, Hi: y + h}}
}

// Overlaps reports interior intersection. Rects that only share an edge do not overlap.
func Overlaps(a, b Rect) bool {
	return a.InteriorIntersects(b)
}

// FormatRect renders a rect for logs and test failures.
func FormatRect(r Rect) string {
	return fmt.Sprintf("[%.1f,%.1f %.1f,%.1f]", r.X.Lo, r.Y.Lo, r.X.Hi, r.Y.Hi)
}

// WordBox is one whitespace-delimited token with its bounding box.
type WordBox struct {
	Text string `json:"text"`
	Rect Rect   `json:"rect"`
	// Approximate is set when the token could not be isolated from its glyph
	// run and Rect is the rect of the whole run.
	Approximate bool `json:"approximate,omitempty"`
}

// TextBlock is a run of text on one line of a page. Blocks are never mutated
// after extraction.
type TextBlock struct {
	PageIndex int       `json:"page_index"`
	Rect      Rect      `json:"rect"`
	Text      string    `json:"text"`
	Order     int       `json:"order"` // extraction sequence across the document
	FontSize  float64   `json:"font_size,omitempty"`
	Words     []WordBox `json:"words"`
}

// Page is one page of an extracted document.
type Page struct {
	Index  int         `json:"index"` // 0-based
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Blocks []TextBlock `json:"blocks"`
}

// Bounds returns the page rectangle.
func (p *Page) Bounds() Rect {
	return RectXYWH(0, 0, p.Width, p.Height)
}

// Document is the extracted view of an input PDF.
type Document struct {
	Path  string `json:"path"`
	Pages []Page `json:"pages"`
}

// BlockCount returns the number of text blocks across all pages.
func (d *Document) BlockCount() int {
	n := 0
	for i := range d.Pages {
		n += len(d.Pages[i].Blocks)
	}
	return n
}

// Text returns the concatenated text of the document, one block per line.
func (d *Document) Text() string {
	var out []byte
	for i := range d.Pages {
		for _, b := range d.Pages[i].Blocks {
			out = append(out, b.Text...)
			out = append(out, '\n')
		}
	}
	return string(out)
}

// WordOccurrence is one appearance of a normalized word in the document.
type WordOccurrence struct {
	Normalized  string     `json:"normalized"`
	Raw         string     `json:"raw"`
	PageIndex   int        `json:"page_index"`
	Rect        Rect       `json:"rect"`
	Approximate bool       `json:"approximate,omitempty"`
	Block       *TextBlock `json:"-"` // non-owning
	Index       int        `json:"index"` // token position within the block
}

// Before reports whether o precedes other in source order.
func (o WordOccurrence) Before(other WordOccurrence) bool {
	oo, po := o.blockOrder(), other.blockOrder()
	if oo != po {
		return oo < po
	}
	return o.Index < other.Index
}

func (o WordOccurrence) blockOrder() int {
	if o.Block == nil {
		return -1
	}
	return o.Block.Order
}
