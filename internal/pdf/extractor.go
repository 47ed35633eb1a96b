// Package pdf reads positioned text from PDF files and writes annotation
// stamps back into them.
package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/dslipak/pdf"
	"github.com/revyh/glossify/internal/document"
	"github.com/revyh/glossify/internal/failure"
	"golang.org/x/sync/errgroup"
)

// Default page size (US Letter) used when a page has no usable MediaBox.
const (
	DefaultPageWidth  = 612.0
	DefaultPageHeight = 792.0
)

// ExtractorConfig configures a TextExtractor.
type ExtractorConfig struct {
	Workers     int                  // parallel page readers (0 = runtime.NumCPU())
	Pages       string               // optional 1-based page selection, e.g. "1-3,5"
	Credentials *PasswordCredentials // passwords for encrypted input
	Layout      LayoutConfig
}

// DefaultExtractorConfig returns sensible defaults for extraction.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Workers: runtime.NumCPU(),
		Layout:  DefaultLayoutConfig(),
	}
}

// TextExtractor produces positioned text blocks for every page of a PDF.
type TextExtractor struct {
	cfg    ExtractorConfig
	logger *slog.Logger
}

// NewTextExtractor creates an extractor. A nil logger uses slog.Default().
func NewTextExtractor(cfg ExtractorConfig, logger *slog.Logger) *TextExtractor {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Layout.WordGapFactor <= 0 {
		cfg.Layout = DefaultLayoutConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TextExtractor{cfg: cfg, logger: logger}
}

// Extraction is an extracted document plus what is needed to write it back.
type Extraction struct {
	Document *document.Document
	// Source is the path stamps are applied to. It differs from the input path
	// when the input was decrypted into a temporary copy.
	Source   string
	Selected []int // 1-based pages that were annotated; all when empty
	cleanup  func()
}

// Close removes temporary files created during extraction.
func (x *Extraction) Close() {
	if x != nil && x.cleanup != nil {
		x.cleanup()
		x.cleanup = nil
	}
}

// Extract reads path and returns per-page ordered text blocks.
func (e *TextExtractor) Extract(ctx context.Context, path string) (*Extraction, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, failure.Input("stat", fmt.Sprintf("cannot read input %q", path), err)
	}
	if info.IsDir() {
		return nil, failure.Input("stat", fmt.Sprintf("input %q is a directory", path), nil)
	}
	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided PDF path is expected
	if err != nil {
		return nil, failure.Input("open", fmt.Sprintf("cannot open input %q", path), err)
	}
	_ = f.Close()

	source, cleanup, err := NewPasswordHandler(e.cfg.Credentials).Prepare(path)
	if err != nil {
		return nil, err
	}
	ext := &Extraction{Source: source, cleanup: cleanup}

	doc, selected, err := e.extractFile(ctx, source)
	if err != nil {
		ext.Close()
		return nil, err
	}
	doc.Path = path
	ext.Document = doc
	ext.Selected = selected
	return ext, nil
}

func (e *TextExtractor) extractFile(ctx context.Context, source string) (*document.Document, []int, error) {
	numPages, err := withReader(source, func(r *pdf.Reader) (int, error) {
		return r.NumPage(), nil
	})
	if err != nil {
		return nil, nil, err
	}
	if numPages == 0 {
		return nil, nil, failure.Document("open", "document has no pages", nil)
	}

	selected, err := ParsePageRange(e.cfg.Pages, numPages)
	if err != nil {
		return nil, nil, failure.Input("pages", "invalid page selection", err)
	}
	wanted := make(map[int]bool, len(selected))
	for _, p := range selected {
		wanted[p] = true
	}

	pages := make([]document.Page, numPages)
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 1; i <= numPages; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	workers := min(e.cfg.Workers, numPages)
	for range workers {
		g.Go(func() error {
			_, err := withReader(source, func(r *pdf.Reader) (struct{}, error) {
				for num := range jobs {
					if err := gctx.Err(); err != nil {
						return struct{}{}, err
					}
					withText := len(wanted) == 0 || wanted[num]
					page, err := e.extractPage(r, num, withText)
					if err != nil {
						return struct{}{}, err
					}
					pages[num-1] = page
				}
				return struct{}{}, nil
			})
			return err
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, nil, failure.Cancelled("extract", ctx.Err())
		}
		return nil, nil, err
	}

	order := 0
	for i := range pages {
		for j := range pages[i].Blocks {
			pages[i].Blocks[j].Order = order
			order++
		}
	}

	doc := &document.Document{Pages: pages}
	e.logger.Debug("extracted document",
		"pages", numPages,
		"blocks", doc.BlockCount(),
		"selected", len(selected))
	return doc, selected, nil
}

// extractPage reads one page. Content decoding panics on malformed streams,
// so the panic is converted into a DocumentError for that page.
func (e *TextExtractor) extractPage(r *pdf.Reader, num int, withText bool) (page document.Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = failure.Document("extract", fmt.Sprintf("malformed page content: %v", rec), nil).WithPage(num)
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return document.Page{}, failure.Document("extract", "page object is missing", nil).WithPage(num)
	}

	llx, lly, urx, ury := pageBox(p)
	page = document.Page{Index: num - 1, Width: urx - llx, Height: ury - lly}
	if !withText {
		return page, nil
	}

	content := p.Content()
	geo := pageGeometry{originX: llx, top: ury}
	page.Blocks = e.cfg.Layout.buildBlocks(content.Text, geo, num-1)
	return page, nil
}

// pageBox returns the MediaBox, inherited from ancestors when needed.
func pageBox(p pdf.Page) (llx, lly, urx, ury float64) {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() != 4 {
			continue
		}
		llx, lly = box.Index(0).Float64(), box.Index(1).Float64()
		urx, ury = box.Index(2).Float64(), box.Index(3).Float64()
		if urx > llx && ury > lly {
			return llx, lly, urx, ury
		}
	}
	return 0, 0, DefaultPageWidth, DefaultPageHeight
}

// withReader opens source with its own reader, which is not safe to share
// between goroutines.
func withReader[T any](source string, fn func(*pdf.Reader) (T, error)) (res T, err error) {
	f, err := os.Open(source) //nolint:gosec // G304: path produced by Prepare
	if err != nil {
		return res, failure.Input("open", fmt.Sprintf("cannot open %q", source), err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return res, failure.Input("stat", fmt.Sprintf("cannot stat %q", source), err)
	}

	var r *pdf.Reader
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("%v", rec)
			}
		}()
		r, err = pdf.NewReader(f, info.Size())
	}()
	if err != nil {
		if IsPasswordError(err) {
			return res, failure.Document("open", "document is encrypted; supply a password", err)
		}
		return res, failure.Document("open", "not a readable PDF", err)
	}
	return fn(r)
}
