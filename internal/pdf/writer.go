package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/revyh/glossify/internal/document"
	"github.com/revyh/glossify/internal/failure"
)

// Stamp is one piece of text drawn onto a page. Rect is in page space
// (origin top-left); the text baseline sits on the bottom of Rect.
type Stamp struct {
	PageIndex int
	Rect      document.Rect
	Text      string
	FontSize  float64
}

// StampStyle controls the appearance of written stamps.
type StampStyle struct {
	FontName  string
	FillColor string // hex, e.g. "#1F3A93"
	Opacity   float64
}

// DefaultStampStyle returns the default annotation style.
func DefaultStampStyle() StampStyle {
	return StampStyle{FontName: "Helvetica", FillColor: "#1F3A93", Opacity: 1}
}

// StampWriter adds text stamps to a PDF without touching existing content.
type StampWriter struct {
	style  StampStyle
	logger *slog.Logger
}

// NewStampWriter creates a writer. A nil logger uses slog.Default().
func NewStampWriter(style StampStyle, logger *slog.Logger) *StampWriter {
	if style.FontName == "" {
		style = DefaultStampStyle()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StampWriter{style: style, logger: logger}
}

// Write stamps src into dst. With no stamps, original is copied byte for byte.
// The output is written to a temporary file next to dst and renamed into
// place, so a failed or cancelled write never leaves a partial file.
func (w *StampWriter) Write(ctx context.Context, doc *document.Document, original, src, dst string, stamps []Stamp) error {
	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, ".glossify-*.pdf")
	if err != nil {
		return failure.Output("create", fmt.Sprintf("cannot create output in %q", dir), err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpName)
		}
	}()

	if len(stamps) == 0 {
		if err := copyFile(original, tmpName); err != nil {
			return failure.Output("copy", "cannot copy input to output", err)
		}
	} else {
		m, err := w.watermarks(doc, stamps)
		if err != nil {
			return failure.Output("stamp", "cannot build annotation stamps", err)
		}
		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed
		if err := api.AddWatermarksSliceMapFile(src, tmpName, m, conf); err != nil {
			return failure.Output("stamp", "cannot write annotations", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return failure.Cancelled("write", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return failure.Output("rename", fmt.Sprintf("cannot move output to %q", dst), err)
	}
	renamed = true

	w.logger.Debug("wrote output", "path", dst, "stamps", len(stamps))
	return nil
}

// watermarks converts stamps into pdfcpu text stamps keyed by 1-based page.
func (w *StampWriter) watermarks(doc *document.Document, stamps []Stamp) (map[int][]*model.Watermark, error) {
	sorted := make([]Stamp, len(stamps))
	copy(sorted, stamps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PageIndex < sorted[j].PageIndex })

	m := make(map[int][]*model.Watermark)
	for _, s := range sorted {
		if s.PageIndex < 0 || s.PageIndex >= len(doc.Pages) {
			return nil, fmt.Errorf("stamp page %d out of range", s.PageIndex+1)
		}
		wm, err := api.TextWatermark(s.Text, w.description(doc.Pages[s.PageIndex], s), true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", s.PageIndex+1, err)
		}
		m[s.PageIndex+1] = append(m[s.PageIndex+1], wm)
	}
	return m, nil
}

// description renders the pdfcpu stamp description for s. pdfcpu positions
// stamps from the bottom-left corner in PDF user space.
func (w *StampWriter) description(page document.Page, s Stamp) string {
	points := int(s.FontSize + 0.5)
	if points < 1 {
		points = 1
	}
	dx := s.Rect.X.Lo
	dy := page.Height - s.Rect.Y.Hi
	return fmt.Sprintf(
		"fontname:%s, points:%d, position:bl, offset:%.2f %.2f, scalefactor:1 abs, rotation:0, fillcolor:%s, opacity:%.2f",
		w.style.FontName, points, dx, dy, w.style.FillColor, w.style.Opacity)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: copying the user's input file
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) //nolint:gosec // G304: temp file we created
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
