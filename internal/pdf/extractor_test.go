package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dslipak/pdf"
	"github.com/revyh/glossify/internal/document"
	"github.com/revyh/glossify/internal/failure"
	"github.com/revyh/glossify/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, cfg ExtractorConfig, path string) *Extraction {
	t.Helper()
	ext, err := NewTextExtractor(cfg, nil).Extract(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(ext.Close)
	return ext
}

func TestExtract_WordBoxes(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "in.pdf",
		testutil.Letter(testutil.Line{X: 72, Baseline: 700, Size: 12, Text: "hello world"}))

	ext := extract(t, DefaultExtractorConfig(), path)
	doc := ext.Document

	require.Len(t, doc.Pages, 1)
	page := doc.Pages[0]
	assert.InDelta(t, 612, page.Width, 1e-6)
	assert.InDelta(t, 792, page.Height, 1e-6)
	require.Len(t, page.Blocks, 1)

	block := page.Blocks[0]
	assert.Equal(t, "hello world", block.Text)
	require.Len(t, block.Words, 2)

	hello, world := block.Words[0], block.Words[1]
	assert.Equal(t, "hello", hello.Text)
	assert.Equal(t, "world", world.Text)
	assert.False(t, hello.Approximate)

	assert.InDelta(t, 72, hello.Rect.X.Lo, 0.01)
	assert.InDelta(t, 72+testutil.TextWidth("hello", 12), hello.Rect.X.Hi, 0.01)
	assert.InDelta(t, 72+testutil.TextWidth("hello ", 12), world.Rect.X.Lo, 0.01)
	assert.InDelta(t, 792-(700+0.8*12), hello.Rect.Y.Lo, 0.01)
	assert.InDelta(t, 792-(700-0.2*12), hello.Rect.Y.Hi, 0.01)
	assert.False(t, document.Overlaps(hello.Rect, world.Rect))
}

func TestExtract_ReadingOrderAndPages(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "in.pdf",
		testutil.Letter(
			testutil.Line{X: 72, Baseline: 650, Text: "second line"},
			testutil.Line{X: 72, Baseline: 700, Text: "first line"},
		),
		testutil.PageSpec{Width: 595, Height: 842},
		testutil.Letter(testutil.Line{X: 100, Baseline: 400, Text: "third"}),
	)

	doc := extract(t, DefaultExtractorConfig(), path).Document
	require.Len(t, doc.Pages, 3)

	assert.Equal(t, "first line", doc.Pages[0].Blocks[0].Text)
	assert.Equal(t, "second line", doc.Pages[0].Blocks[1].Text)
	assert.Empty(t, doc.Pages[1].Blocks)
	assert.InDelta(t, 595, doc.Pages[1].Width, 1e-6)
	assert.InDelta(t, 842, doc.Pages[1].Height, 1e-6)

	assert.Equal(t, 0, doc.Pages[0].Blocks[0].Order)
	assert.Equal(t, 1, doc.Pages[0].Blocks[1].Order)
	assert.Equal(t, 2, doc.Pages[2].Blocks[0].Order)
	assert.Equal(t, 2, doc.Pages[2].Blocks[0].PageIndex)
	assert.Equal(t, 3, doc.BlockCount())
}

func TestExtract_PageSelection(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "in.pdf",
		testutil.Letter(testutil.Line{X: 72, Baseline: 700, Text: "skipped"}),
		testutil.Letter(testutil.Line{X: 72, Baseline: 700, Text: "kept"}),
	)

	cfg := DefaultExtractorConfig()
	cfg.Pages = "2"
	ext := extract(t, cfg, path)

	assert.Equal(t, []int{2}, ext.Selected)
	assert.Empty(t, ext.Document.Pages[0].Blocks)
	require.Len(t, ext.Document.Pages[1].Blocks, 1)
	assert.Equal(t, "kept", ext.Document.Pages[1].Blocks[0].Text)
}

func TestExtract_InvalidPageSelection(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "in.pdf", testutil.Letter())
	cfg := DefaultExtractorConfig()
	cfg.Pages = "4"

	_, err := NewTextExtractor(cfg, nil).Extract(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, failure.KindInput, failure.KindOf(err))
}

func TestExtract_InputErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewTextExtractor(DefaultExtractorConfig(), nil).Extract(context.Background(), filepath.Join(dir, "nope.pdf"))
		require.Error(t, err)
		assert.Equal(t, failure.KindInput, failure.KindOf(err))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := NewTextExtractor(DefaultExtractorConfig(), nil).Extract(context.Background(), dir)
		require.Error(t, err)
		assert.Equal(t, failure.KindInput, failure.KindOf(err))
	})

	t.Run("not a pdf", func(t *testing.T) {
		bogus := filepath.Join(dir, "bogus.pdf")
		require.NoError(t, os.WriteFile(bogus, []byte("definitely not a pdf"), 0o600))
		_, err := NewTextExtractor(DefaultExtractorConfig(), nil).Extract(context.Background(), bogus)
		require.Error(t, err)
		assert.Equal(t, failure.KindDocument, failure.KindOf(err))
	})
}

func TestExtract_Encrypted(t *testing.T) {
	dir := t.TempDir()
	plain := testutil.WritePDF(t, dir, "plain.pdf",
		testutil.Letter(testutil.Line{X: 72, Baseline: 700, Text: "secret words"}))
	locked := filepath.Join(dir, "locked.pdf")
	testutil.EncryptPDF(t, plain, locked, "user", "owner")

	t.Run("no password", func(t *testing.T) {
		_, err := NewTextExtractor(DefaultExtractorConfig(), nil).Extract(context.Background(), locked)
		require.Error(t, err)
		assert.Equal(t, failure.KindDocument, failure.KindOf(err))
		assert.True(t, IsPasswordError(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		cfg := DefaultExtractorConfig()
		cfg.Credentials = &PasswordCredentials{UserPassword: "nope"}
		_, err := NewTextExtractor(cfg, nil).Extract(context.Background(), locked)
		require.Error(t, err)
		assert.Equal(t, failure.KindDocument, failure.KindOf(err))
	})

	t.Run("correct password", func(t *testing.T) {
		cfg := DefaultExtractorConfig()
		cfg.Credentials = &PasswordCredentials{UserPassword: "user"}
		ext := extract(t, cfg, locked)
		assert.NotEqual(t, locked, ext.Source)
		require.Len(t, ext.Document.Pages[0].Blocks, 1)
		assert.Equal(t, "secret words", ext.Document.Pages[0].Blocks[0].Text)

		source := ext.Source
		ext.Close()
		assert.False(t, testutil.FileExists(source))
	})
}

func TestExtract_Cancelled(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "in.pdf", testutil.Letter(), testutil.Letter())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTextExtractor(DefaultExtractorConfig(), nil).Extract(ctx, path)
	require.Error(t, err)
	assert.Equal(t, failure.KindCancelled, failure.KindOf(err))
}

func TestLayout_MultiWordRunIsApproximate(t *testing.T) {
	cfg := DefaultLayoutConfig()
	geo := pageGeometry{top: 792}
	texts := []pdf.Text{
		{Font: "Courier", FontSize: 10, X: 50, Y: 500, W: 60, S: "alpha beta"},
		{Font: "Courier", FontSize: 10, X: 120, Y: 500, W: 6, S: "g"},
		{Font: "Courier", FontSize: 10, X: 126, Y: 500, W: 6, S: "o"},
	}

	blocks := cfg.buildBlocks(texts, geo, 0)
	require.Len(t, blocks, 1)
	words := blocks[0].Words
	require.Len(t, words, 3)

	assert.Equal(t, "alpha", words[0].Text)
	assert.True(t, words[0].Approximate)
	assert.True(t, words[1].Approximate)
	assert.Equal(t, words[0].Rect, words[1].Rect)
	assert.Equal(t, "go", words[2].Text)
	assert.False(t, words[2].Approximate)
	assert.InDelta(t, 132, words[2].Rect.X.Hi, 1e-9)
	assert.Equal(t, "alpha beta go", blocks[0].Text)
}

func TestLayout_GapSplitsWords(t *testing.T) {
	cfg := DefaultLayoutConfig()
	texts := []pdf.Text{
		{FontSize: 10, X: 10, Y: 100, W: 5, S: "a"},
		{FontSize: 10, X: 15, Y: 100.5, W: 5, S: "b"},
		{FontSize: 10, X: 30, Y: 100, W: 5, S: "c"},
		{FontSize: 10, X: 10, Y: 80, W: 5, S: "d"},
	}

	blocks := cfg.buildBlocks(texts, pageGeometry{top: 200}, 0)
	require.Len(t, blocks, 2)
	assert.Equal(t, "ab c", blocks[0].Text)
	assert.Equal(t, "d", blocks[1].Text)
}

func TestLayout_MissingWidths(t *testing.T) {
	r := pageGeometry{top: 100}.rect(pdf.Text{FontSize: 10, X: 0, Y: 50, W: 0, S: "ab"})
	assert.InDelta(t, 10, r.X.Hi, 1e-9)
}
