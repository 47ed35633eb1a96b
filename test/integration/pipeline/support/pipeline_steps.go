package support

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
	"github.com/revyh/glossify/internal/cefr"
	"github.com/revyh/glossify/internal/failure"
	"github.com/revyh/glossify/internal/pipeline"
	"github.com/revyh/glossify/internal/testutil"
	"github.com/revyh/glossify/internal/vocab"
)

func (testCtx *TestContext) aPDFPageWithTheText(text string) error {
	testCtx.Pages = append(testCtx.Pages, testutil.Letter(testutil.Line{X: 72, Baseline: 700, Text: text}))
	return nil
}

func (testCtx *TestContext) anEmptyPDFPage() error {
	testCtx.Pages = append(testCtx.Pages, testutil.Letter())
	return nil
}

// aCrowdedPDFPage fills the page with 10pt lines from top to bottom so no
// inline slot is free. The first n lines start with word.
func (testCtx *TestContext) aCrowdedPDFPage(word string, n int) error {
	var lines []testutil.Line
	i := 0
	for baseline := 780.0; baseline >= 60; baseline -= 10 {
		text := strings.TrimSpace(strings.Repeat("lorem ", 16))
		if i < n {
			text = word + " " + strings.TrimSpace(strings.Repeat("lorem ", 14))
		}
		lines = append(lines, testutil.Line{X: 10, Baseline: baseline, Size: 10, Text: text})
		i++
	}
	testCtx.Pages = append(testCtx.Pages, testutil.Letter(lines...))
	return nil
}

func (testCtx *TestContext) aCorruptPDFFile() error {
	path := filepath.Join(testCtx.TempDir, "input.pdf")
	data := []byte("%PDF-1.7\nthis is not really a pdf\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	testCtx.Input = path
	testCtx.InputBytes = data
	return nil
}

func (testCtx *TestContext) theVocabulary(table *godog.Table) error {
	m := vocab.NewMapLookup()
	for _, row := range table.Rows[1:] {
		lvl, err := cefr.Parse(row.Cells[1].Value)
		if err != nil {
			return err
		}
		m.Add(vocab.Entry{Word: row.Cells[0].Value, Language: "en", Level: lvl})
	}
	testCtx.Lookup = m
	return nil
}

func (testCtx *TestContext) iAnnotateTheDocument(level, target string) error {
	if err := testCtx.writeInput(); err != nil {
		return err
	}
	threshold, err := cefr.Parse(level)
	if err != nil {
		return err
	}

	cfg := pipeline.DefaultConfig()
	cfg.Workers = 2
	controller := pipeline.NewController(testCtx.Lookup, testCtx.Provider, cfg)
	testCtx.Summary, testCtx.LastError = controller.Run(context.Background(), pipeline.Request{
		Input:          testCtx.Input,
		SourceLanguage: "en",
		TargetLanguage: target,
		Threshold:      threshold,
	})
	return nil
}

func (testCtx *TestContext) theRunShouldSucceed() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("expected success, got %w", testCtx.LastError)
	}
	return nil
}

func (testCtx *TestContext) theRunShouldFailWith(kind string) error {
	if testCtx.LastError == nil {
		return fmt.Errorf("expected %s, run succeeded", kind)
	}
	if got := failure.KindOf(testCtx.LastError); string(got) != kind {
		return fmt.Errorf("expected %s, got %s (%v)", kind, got, testCtx.LastError)
	}
	return nil
}

func (testCtx *TestContext) theProviderShouldNotHaveBeenCalled() error {
	if n := testCtx.Provider.Calls(); n != 0 {
		return fmt.Errorf("expected no provider calls, got %d", n)
	}
	return nil
}

func (testCtx *TestContext) theProviderShouldHaveBeenCalledOnceWith(words string) error {
	if n := testCtx.Provider.Calls(); n != 1 {
		return fmt.Errorf("expected one provider call, got %d", n)
	}
	want := strings.Split(words, ", ")
	got := testCtx.Provider.Batches[0]
	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("expected batch %v, got %v", want, got)
	}
	return nil
}

func (testCtx *TestContext) wordsShouldBeFlagged(n int) error {
	if testCtx.Summary == nil {
		return fmt.Errorf("no run summary")
	}
	if testCtx.Summary.WordsFlagged != n {
		return fmt.Errorf("expected %d flagged words, got %d", n, testCtx.Summary.WordsFlagged)
	}
	return nil
}

func (testCtx *TestContext) thereShouldBeAnnotations(inline, footnotes int) error {
	s := testCtx.Summary
	if s == nil {
		return fmt.Errorf("no run summary")
	}
	if s.InlineAnnotations != inline || s.FootnoteAnnotations != footnotes {
		return fmt.Errorf("expected %d inline and %d footnote annotations, got %d and %d",
			inline, footnotes, s.InlineAnnotations, s.FootnoteAnnotations)
	}
	return nil
}

func (testCtx *TestContext) pageShouldReportAFallbackWarning(page int) error {
	for _, w := range testCtx.Summary.Warnings {
		if w.Kind == failure.KindAnnotation && w.Page == page && strings.Contains(w.Message, "footnotes") {
			return nil
		}
	}
	return fmt.Errorf("no footnote warning for page %d in %v", page, testCtx.Summary.Warnings)
}

func (testCtx *TestContext) theOutputFileShouldBeIdenticalToTheInput() error {
	data, err := os.ReadFile(testCtx.OutputPath())
	if err != nil {
		return fmt.Errorf("failed to read output: %w", err)
	}
	if !bytes.Equal(data, testCtx.InputBytes) {
		return fmt.Errorf("output differs from input (%d vs %d bytes)", len(data), len(testCtx.InputBytes))
	}
	return nil
}

func (testCtx *TestContext) theOutputFileShouldDifferFromTheInput() error {
	data, err := os.ReadFile(testCtx.OutputPath())
	if err != nil {
		return fmt.Errorf("failed to read output: %w", err)
	}
	if bytes.Equal(data, testCtx.InputBytes) {
		return fmt.Errorf("output is identical to the input")
	}
	return nil
}

func (testCtx *TestContext) noOutputFileShouldExist() error {
	if _, err := os.Stat(testCtx.OutputPath()); !os.IsNotExist(err) {
		return fmt.Errorf("expected no output file at %s", testCtx.OutputPath())
	}
	return nil
}

// RegisterPipelineSteps registers the document and pipeline step definitions.
func (testCtx *TestContext) RegisterPipelineSteps(sc *godog.ScenarioContext) {
	// Documents
	sc.Step(`^a PDF page with the text "([^"]*)"$`, testCtx.aPDFPageWithTheText)
	sc.Step(`^an empty PDF page$`, testCtx.anEmptyPDFPage)
	sc.Step(`^a crowded PDF page where (\d+) lines start with "([^"]*)"$`, func(n int, word string) error {
		return testCtx.aCrowdedPDFPage(word, n)
	})
	sc.Step(`^a corrupt PDF file$`, testCtx.aCorruptPDFFile)
	sc.Step(`^the vocabulary:$`, testCtx.theVocabulary)

	// Runs
	sc.Step(`^I annotate the document for a (\w\d) learner translating into "([^"]*)"$`, testCtx.iAnnotateTheDocument)
	sc.Step(`^the run should succeed$`, testCtx.theRunShouldSucceed)
	sc.Step(`^the run should fail with (\w+)$`, testCtx.theRunShouldFailWith)

	// Results
	sc.Step(`^the translation provider should not have been called$`, testCtx.theProviderShouldNotHaveBeenCalled)
	sc.Step(`^the translation provider should have been called once with "([^"]*)"$`, testCtx.theProviderShouldHaveBeenCalledOnceWith)
	sc.Step(`^(\d+) words? should be flagged$`, testCtx.wordsShouldBeFlagged)
	sc.Step(`^there should be (\d+) inline and (\d+) footnote annotations?$`, testCtx.thereShouldBeAnnotations)
	sc.Step(`^page (\d+) should report a footnote fallback$`, testCtx.pageShouldReportAFallbackWarning)
	sc.Step(`^the output file should be identical to the input$`, testCtx.theOutputFileShouldBeIdenticalToTheInput)
	sc.Step(`^the output file should differ from the input$`, testCtx.theOutputFileShouldDifferFromTheInput)
	sc.Step(`^no output file should exist$`, testCtx.noOutputFileShouldExist)
}
