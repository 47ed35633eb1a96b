// Package pipeline sequences extraction, classification, translation,
// placement and output for one document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/revyh/glossify/internal/cefr"
	"github.com/revyh/glossify/internal/common"
	"github.com/revyh/glossify/internal/document"
	"github.com/revyh/glossify/internal/failure"
	"github.com/revyh/glossify/internal/pdf"
	"github.com/revyh/glossify/internal/placement"
	"github.com/revyh/glossify/internal/translate"
	"github.com/revyh/glossify/internal/vocab"
)

// AutoLanguage asks the controller to detect the source language.
const AutoLanguage = "auto"

// fallbackLanguage is used when detection finds nothing.
const fallbackLanguage = "en"

// Config holds the tunables of every stage.
type Config struct {
	Workers    int // page workers for extraction and placement (0 = runtime.NumCPU())
	Layout     pdf.LayoutConfig
	Classifier vocab.ClassifierConfig
	Translate  translate.Config
	Placement  placement.Config
	Stamp      pdf.StampStyle
}

// DefaultConfig returns the default stage configuration.
func DefaultConfig() Config {
	return Config{
		Workers:    runtime.NumCPU(),
		Layout:     pdf.DefaultLayoutConfig(),
		Classifier: vocab.ClassifierConfig{Unknown: vocab.UnknownAccept},
		Translate:  translate.DefaultConfig(),
		Placement:  placement.DefaultConfig(),
		Stamp:      pdf.DefaultStampStyle(),
	}
}

// Request describes one document to annotate.
type Request struct {
	Input          string
	Output         string // default: DefaultOutputPath(Input)
	SourceLanguage string // language code or AutoLanguage
	TargetLanguage string
	Threshold      cefr.Level
	Pages          string // optional 1-based selection, e.g. "1-3,5"
	Credentials    *pdf.PasswordCredentials
}

// DefaultOutputPath returns "<name>_translated<ext>" next to input.
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_translated" + ext
}

// Validate checks the request before any file is touched.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Input) == "" {
		return failure.Input("validate", "no input file given", nil)
	}
	if !r.Threshold.Valid() {
		return failure.Input("validate", fmt.Sprintf("invalid proficiency level %v", r.Threshold), nil)
	}
	if r.SourceLanguage != AutoLanguage {
		if err := vocab.ValidateLanguage(r.SourceLanguage); err != nil {
			return failure.Input("validate", "invalid source language", err)
		}
	}
	if err := vocab.ValidateLanguage(r.TargetLanguage); err != nil {
		return failure.Input("validate", "invalid target language", err)
	}
	out := r.Output
	if out == "" {
		out = DefaultOutputPath(r.Input)
	}
	inAbs, err1 := filepath.Abs(r.Input)
	outAbs, err2 := filepath.Abs(out)
	if err1 == nil && err2 == nil && inAbs == outAbs {
		return failure.Input("validate", "output would overwrite the input file", nil)
	}
	return nil
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithProgress reports page placement progress.
func WithProgress(cb ProgressCallback) Option {
	return func(c *Controller) { c.progress = cb }
}

// WithMetrics records run metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithPlacer replaces the annotation placer.
func WithPlacer(p PagePlacer) Option {
	return func(c *Controller) { c.placer = p }
}

// Controller runs the annotation pipeline. Collaborators are injected and
// must be safe for concurrent use.
type Controller struct {
	lookup   vocab.Lookup
	provider translate.Provider
	cfg      Config
	placer   PagePlacer
	logger   *slog.Logger
	progress ProgressCallback
	metrics  *Metrics
}

// NewController creates a controller over a vocabulary and a translation provider.
func NewController(lookup vocab.Lookup, provider translate.Provider, cfg Config, opts ...Option) *Controller {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	c := &Controller{
		lookup:   lookup,
		provider: provider,
		cfg:      cfg,
		logger:   slog.Default(),
		progress: NoOpProgressCallback{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.placer == nil {
		c.placer = placement.NewPlacer(cfg.Placement, nil, c.logger)
	}
	return c
}

// Run annotates req.Input and writes req.Output. On failure the returned
// summary holds what was done before the failing stage and the error is a
// *failure.Error.
func (c *Controller) Run(ctx context.Context, req Request) (summary *Summary, err error) {
	start := time.Now()
	if req.Output == "" {
		req.Output = DefaultOutputPath(req.Input)
	}
	summary = &Summary{
		RunID:          uuid.NewString(),
		Input:          req.Input,
		Output:         req.Output,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Threshold:      req.Threshold.String(),
		Warnings:       []failure.Warning{},
	}
	logger := c.logger.With("run_id", summary.RunID)
	var stages common.Stages

	defer func() {
		summary.Stages = stages.List()
		summary.Duration = time.Since(start)
		if err != nil {
			summary.Output = ""
		}
		if c.metrics != nil {
			status := "ok"
			if err != nil {
				status = string(failure.KindOf(err))
			}
			for _, st := range summary.Stages {
				c.metrics.observeStage(st.Stage, st.Duration)
			}
			c.metrics.observeRun(status, summary)
		}
	}()

	if err := req.Validate(); err != nil {
		return summary, err
	}
	logger.Info("starting run", "input", req.Input, "output", req.Output, "threshold", summary.Threshold)

	// Extract.
	stop := stages.Start("extract")
	extractor := pdf.NewTextExtractor(pdf.ExtractorConfig{
		Workers:     c.cfg.Workers,
		Pages:       req.Pages,
		Credentials: req.Credentials,
		Layout:      c.cfg.Layout,
	}, logger)
	ext, err := extractor.Extract(ctx, req.Input)
	stop()
	if err != nil {
		return summary, err
	}
	defer ext.Close()

	doc := ext.Document
	summary.Pages = len(doc.Pages)
	summary.PagesSelected = len(ext.Selected)
	if summary.PagesSelected == 0 {
		summary.PagesSelected = summary.Pages
	}
	summary.BlocksExtracted = doc.BlockCount()

	if req.SourceLanguage == AutoLanguage {
		summary.SourceLanguage = c.detectLanguage(doc, summary, logger)
	}
	if err := ctx.Err(); err != nil {
		return summary, failure.Cancelled("run", err)
	}

	// Classify.
	stop = stages.Start("classify")
	classifier := vocab.NewClassifier(c.lookup, c.cfg.Classifier, logger)
	flagged, stats, err := classifier.Classify(ctx, doc, summary.SourceLanguage, req.Threshold)
	stop()
	if err != nil {
		return summary, err
	}
	summary.Tokens = stats.Tokens
	summary.DistinctWords = stats.Distinct
	summary.WordsFlagged = len(flagged)
	summary.ApproximateAnchors = countApproximate(flagged)

	// Translate.
	stop = stages.Start("translate")
	orchestrator := translate.NewOrchestrator(c.provider, c.cfg.Translate, logger)
	tr, err := orchestrator.Run(ctx, flagged, req.TargetLanguage)
	stop()
	if err != nil {
		return summary, err
	}
	summary.WordsTranslated = len(tr.Pairs)
	summary.WordsUntranslated = tr.Untranslated
	summary.TranslationAttempts = tr.Attempts
	summary.Warnings = append(summary.Warnings, tr.Warnings...)

	// Place.
	stop = stages.Start("place")
	pool := &pagePool{
		placer:       c.placer,
		translations: tr.Pairs,
		workers:      c.cfg.Workers,
		progress:     c.progress,
		logger:       logger,
	}
	results, err := pool.run(ctx, pageJobs(doc, flagged))
	stop()
	if err != nil {
		return summary, err
	}
	stamps := collect(summary, results)

	// Write.
	if err := ctx.Err(); err != nil {
		return summary, failure.Cancelled("run", err)
	}
	stop = stages.Start("write")
	writer := pdf.NewStampWriter(c.cfg.Stamp, logger)
	err = writer.Write(ctx, doc, req.Input, ext.Source, req.Output, stamps)
	stop()
	if err != nil {
		return summary, err
	}

	logger.Info("run completed",
		"words_flagged", summary.WordsFlagged,
		"annotations", summary.Annotations(),
		"fallback_pages", summary.FallbackPages,
		"warnings", len(summary.Warnings))
	return summary, nil
}

func (c *Controller) detectLanguage(doc *document.Document, summary *Summary, logger *slog.Logger) string {
	lang := vocab.DetectLanguage(doc.Text())
	if lang == "" {
		summary.Warnings = append(summary.Warnings, failure.Warning{
			Kind:    failure.KindInput,
			Message: fmt.Sprintf("could not detect source language, assuming %q", fallbackLanguage),
		})
		lang = fallbackLanguage
	}
	logger.Debug("detected source language", "language", lang)
	return lang
}

// pageJobs builds one job per page that has flagged occurrences, in page order.
func pageJobs(doc *document.Document, flagged []vocab.FlaggedWord) []pageJob {
	byPage := placement.OccurrencesByPage(flagged)
	indexes := make([]int, 0, len(byPage))
	for idx := range byPage {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	jobs := make([]pageJob, 0, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(doc.Pages) {
			continue
		}
		jobs = append(jobs, pageJob{index: len(jobs), page: &doc.Pages[idx], occurrences: byPage[idx]})
	}
	return jobs
}

// collect folds page results into the summary and returns the stamps to write.
func collect(summary *Summary, results []placement.PageResult) []pdf.Stamp {
	var stamps []pdf.Stamp
	for _, res := range results {
		summary.InlineAnnotations += res.Inline
		summary.FootnoteAnnotations += res.Footnotes
		summary.UnplacedAnnotations += res.Unplaced
		if res.Footnotes > 0 || res.Unplaced > 0 {
			summary.FallbackPages++
		}
		summary.Warnings = append(summary.Warnings, res.Warnings...)
		for _, a := range res.Annotations {
			stamps = append(stamps, pdf.Stamp{
				PageIndex: a.PageIndex,
				Rect:      a.Rect,
				Text:      a.Content,
				FontSize:  a.FontSize,
			})
		}
	}
	return stamps
}

func countApproximate(flagged []vocab.FlaggedWord) int {
	n := 0
	for _, f := range flagged {
		for _, occ := range f.Occurrences {
			if occ.Approximate {
				n++
			}
		}
	}
	return n
}
