package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/revyh/glossify/internal/document"
	"github.com/revyh/glossify/internal/failure"
	"github.com/revyh/glossify/internal/placement"
	"github.com/revyh/glossify/internal/translate"
)

// PagePlacer lays out the annotations of one page. Implementations must be
// safe for concurrent use across pages.
type PagePlacer interface {
	PlacePage(page *document.Page, occurrences []document.WordOccurrence, translations map[string]translate.TranslationPair) placement.PageResult
	PlaceFootnotes(page *document.Page, occurrences []document.WordOccurrence, translations map[string]translate.TranslationPair) placement.PageResult
}

// pageJob is one page to place.
type pageJob struct {
	index       int
	page        *document.Page
	occurrences []document.WordOccurrence
}

// pageOutcome is the result of one page job.
type pageOutcome struct {
	index    int
	result   placement.PageResult
	degraded error
}

// pagePool places pages on a fixed set of workers.
type pagePool struct {
	placer       PagePlacer
	translations map[string]translate.TranslationPair
	workers      int
	progress     ProgressCallback
	logger       *slog.Logger
}

// run places every job and returns results in job order. A page whose
// inline placement panics is placed again as footnotes only.
func (p *pagePool) run(ctx context.Context, jobs []pageJob) ([]placement.PageResult, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	workers := p.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(jobs))

	p.progress.OnStart(len(jobs))
	defer p.progress.OnComplete()

	jobCh := make(chan pageJob, len(jobs))
	results := make(chan pageOutcome, len(jobs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go p.worker(ctx, jobCh, results, &wg)
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]placement.PageResult, len(jobs))
	done := 0
	for out := range results {
		ordered[out.index] = out.result
		done++
		if out.degraded != nil {
			p.progress.OnError(out.result.PageIndex+1, out.degraded)
		}
		p.progress.OnProgress(done, len(jobs))
	}

	if err := ctx.Err(); err != nil {
		return nil, failure.Cancelled("place", err)
	}
	return ordered, nil
}

func (p *pagePool) worker(ctx context.Context, jobs <-chan pageJob, results chan<- pageOutcome, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			out := p.placeOne(job)
			select {
			case results <- out:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *pagePool) placeOne(job pageJob) pageOutcome {
	out := pageOutcome{index: job.index}
	res, err := guard(func() placement.PageResult {
		return p.placer.PlacePage(job.page, job.occurrences, p.translations)
	})
	if err == nil {
		out.result = res
		return out
	}

	p.logger.Warn("inline placement failed, using footnotes",
		"page", job.page.Index+1,
		"error", err)
	out.degraded = err

	res, ferr := guard(func() placement.PageResult {
		return p.placer.PlaceFootnotes(job.page, job.occurrences, p.translations)
	})
	if ferr != nil {
		res = placement.PageResult{PageIndex: job.page.Index, Unplaced: countTranslated(job.occurrences, p.translations)}
	}
	res.Warnings = append([]failure.Warning{{
		Kind:    failure.KindAnnotation,
		Page:    job.page.Index + 1,
		Message: fmt.Sprintf("inline placement failed: %v", err),
	}}, res.Warnings...)
	out.result = res
	return out
}

// guard runs fn and converts a panic into an error.
func guard(fn func() placement.PageResult) (res placement.PageResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(), nil
}

func countTranslated(occurrences []document.WordOccurrence, translations map[string]translate.TranslationPair) int {
	n := 0
	for _, occ := range occurrences {
		if tr, ok := translations[occ.Normalized]; ok && tr.Translated != "" {
			n++
		}
	}
	return n
}
