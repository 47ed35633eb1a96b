package placement

import (
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/font"
)

// Measurer returns the rendered width of text in points.
type Measurer interface {
	Width(text, fontName string, fontSize float64) float64
}

// coreFonts are the standard 14 PDF fonts pdfcpu ships metrics for.
var coreFonts = map[string]bool{
	"Courier": true, "Courier-Bold": true, "Courier-Oblique": true, "Courier-BoldOblique": true,
	"Helvetica": true, "Helvetica-Bold": true, "Helvetica-Oblique": true, "Helvetica-BoldOblique": true,
	"Times-Roman": true, "Times-Bold": true, "Times-Italic": true, "Times-BoldItalic": true,
	"Symbol": true, "ZapfDingbats": true,
}

// IsCoreFont reports whether name is one of the standard 14 fonts.
func IsCoreFont(name string) bool {
	return coreFonts[name]
}

// CoreFontMeasurer measures with pdfcpu's core font metrics. Non-core font
// names fall back to Helvetica.
type CoreFontMeasurer struct{}

// metricsScale keeps fractional font sizes precise, pdfcpu takes an int size.
const metricsScale = 1000

// Width implements Measurer.
func (CoreFontMeasurer) Width(text, fontName string, fontSize float64) float64 {
	if text == "" {
		return 0
	}
	if !IsCoreFont(fontName) {
		fontName = "Helvetica"
	}
	return font.TextWidth(text, fontName, metricsScale) * fontSize / metricsScale
}

// FixedMeasurer gives every rune the same advance, as a fraction of the font size.
type FixedMeasurer struct {
	Advance float64
}

// Width implements Measurer.
func (m FixedMeasurer) Width(text, _ string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(text)) * m.Advance * fontSize
}
