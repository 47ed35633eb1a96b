package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/require"
)

// GlyphAdvance is the advance of every glyph in fixture PDFs, in units of the
// font size. Fixtures use Courier so word boxes are predictable.
const GlyphAdvance = 0.6

// Line is one line of fixture text. X and Baseline are PDF user-space
// coordinates (origin bottom-left).
type Line struct {
	X, Baseline float64
	Size        float64
	Text        string
}

// PageSpec describes a fixture page.
type PageSpec struct {
	Width, Height float64
	Lines         []Line
}

// Letter returns an empty US Letter page.
func Letter(lines ...Line) PageSpec {
	return PageSpec{Width: 612, Height: 792, Lines: lines}
}

// TextWidth returns the fixture width of s at the given font size.
func TextWidth(s string, size float64) float64 {
	return float64(len([]rune(s))) * GlyphAdvance * size
}

// BuildPDF renders pages into a minimal, valid PDF with a Courier font.
func BuildPDF(pages ...PageSpec) []byte {
	var objs []string

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		courierFont(),
	)

	for i, p := range pages {
		content := pageContent(p)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
				num(p.Width), num(p.Height), 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

// WritePDF writes a fixture PDF into dir and returns its path.
func WritePDF(t *testing.T, dir, name string, pages ...PageSpec) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, BuildPDF(pages...), 0o600))
	return path
}

// EncryptPDF writes an AES-encrypted copy of in to out.
func EncryptPDF(t *testing.T, in, out, userPW, ownerPW string) {
	t.Helper()
	conf := model.NewAESConfiguration(userPW, ownerPW, 256)
	require.NoError(t, api.EncryptFile(in, out, conf))
}

func courierFont() string {
	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = fmt.Sprintf("%d", int(GlyphAdvance*1000))
	}
	return "<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding " +
		"/FirstChar 32 /LastChar 126 /Widths [" + strings.Join(widths, " ") + "] >>"
}

func pageContent(p PageSpec) string {
	var b strings.Builder
	for _, l := range p.Lines {
		size := l.Size
		if size == 0 {
			size = 12
		}
		fmt.Fprintf(&b, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n", num(size), num(l.X), num(l.Baseline), escape(l.Text))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func num(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", f), "0"), ".")
}
