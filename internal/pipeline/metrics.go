package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the run counters of a Controller. Each Metrics owns its
// registry so several controllers can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	runsTotal           *prometheus.CounterVec
	stageDuration       *prometheus.HistogramVec
	pagesTotal          prometheus.Counter
	wordsFlagged        prometheus.Counter
	wordsUntranslated   prometheus.Counter
	annotationsTotal    *prometheus.CounterVec
	fallbackPages       prometheus.Counter
	translationAttempts prometheus.Counter
	approximateAnchors  prometheus.Counter
}

// NewMetrics registers the pipeline metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glossify_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"status"}, // status: ok or a failure kind
		),

		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glossify_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"stage"}, // stage: extract, classify, translate, place, write
		),

		pagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "glossify_pages_total",
			Help: "Total number of pages read",
		}),

		wordsFlagged: factory.NewCounter(prometheus.CounterOpts{
			Name: "glossify_words_flagged_total",
			Help: "Total number of distinct words above the proficiency threshold",
		}),

		wordsUntranslated: factory.NewCounter(prometheus.CounterOpts{
			Name: "glossify_words_untranslated_total",
			Help: "Total number of flagged words the provider could not translate",
		}),

		annotationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glossify_annotations_total",
				Help: "Total number of annotations written",
			},
			[]string{"strategy"}, // strategy: inline, footnote
		),

		fallbackPages: factory.NewCounter(prometheus.CounterOpts{
			Name: "glossify_fallback_pages_total",
			Help: "Total number of pages with footnote annotations",
		}),

		translationAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "glossify_translation_attempts_total",
			Help: "Total number of translation provider calls, retries included",
		}),

		approximateAnchors: factory.NewCounter(prometheus.CounterOpts{
			Name: "glossify_approximate_anchors_total",
			Help: "Total number of word occurrences anchored to a whole glyph run",
		}),
	}
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) observeRun(status string, s *Summary) {
	m.runsTotal.WithLabelValues(status).Inc()
	if s == nil {
		return
	}
	m.pagesTotal.Add(float64(s.Pages))
	m.wordsFlagged.Add(float64(s.WordsFlagged))
	m.wordsUntranslated.Add(float64(s.WordsUntranslated))
	m.annotationsTotal.WithLabelValues("inline").Add(float64(s.InlineAnnotations))
	m.annotationsTotal.WithLabelValues("footnote").Add(float64(s.FootnoteAnnotations))
	m.fallbackPages.Add(float64(s.FallbackPages))
	m.translationAttempts.Add(float64(s.TranslationAttempts))
	m.approximateAnchors.Add(float64(s.ApproximateAnchors))
}

// WriteTextfile writes all metrics in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
