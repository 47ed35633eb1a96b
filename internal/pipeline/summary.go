package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/revyh/glossify/internal/common"
	"github.com/revyh/glossify/internal/failure"
)

// Summary reports what a run did. It is returned for failed runs too, filled
// up to the stage that failed.
type Summary struct {
	RunID          string `json:"run_id"`
	Input          string `json:"input"`
	Output         string `json:"output,omitempty"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Threshold      string `json:"threshold"`

	Pages               int `json:"pages"`
	PagesSelected       int `json:"pages_selected"`
	BlocksExtracted     int `json:"blocks_extracted"`
	Tokens              int `json:"tokens"`
	DistinctWords       int `json:"distinct_words"`
	WordsFlagged        int `json:"words_flagged"`
	WordsTranslated     int `json:"words_translated"`
	WordsUntranslated   int `json:"words_untranslated"`
	TranslationAttempts int `json:"translation_attempts"`

	InlineAnnotations   int `json:"inline_annotations"`
	FootnoteAnnotations int `json:"footnote_annotations"`
	UnplacedAnnotations int `json:"unplaced_annotations"`
	FallbackPages       int `json:"fallback_pages"`
	ApproximateAnchors  int `json:"approximate_anchors"`

	Warnings []failure.Warning      `json:"warnings"`
	Stages   []common.StageDuration `json:"stages"`
	Duration time.Duration          `json:"duration_ns"`
}

// Annotations is the total number of written annotations.
func (s *Summary) Annotations() int {
	return s.InlineAnnotations + s.FootnoteAnnotations
}

// WriteJSON writes the summary as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteText writes a human readable report.
func (s *Summary) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Run", s.RunID},
		{"Input", s.Input},
		{"Output", s.Output},
		{"Languages", fmt.Sprintf("%s -> %s", s.SourceLanguage, s.TargetLanguage)},
		{"Threshold", s.Threshold},
		{"Pages", fmt.Sprintf("%d (%d selected)", s.Pages, s.PagesSelected)},
		{"Blocks", fmt.Sprint(s.BlocksExtracted)},
		{"Words flagged", fmt.Sprint(s.WordsFlagged)},
		{"Words translated", fmt.Sprintf("%d (%d untranslated)", s.WordsTranslated, s.WordsUntranslated)},
		{"Annotations", fmt.Sprintf("%d inline, %d footnote, %d unplaced",
			s.InlineAnnotations, s.FootnoteAnnotations, s.UnplacedAnnotations)},
		{"Fallback pages", fmt.Sprint(s.FallbackPages)},
		{"Approximate anchors", fmt.Sprint(s.ApproximateAnchors)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	if len(s.Stages) > 0 {
		parts := make([]string, len(s.Stages))
		for i, st := range s.Stages {
			parts[i] = fmt.Sprintf("%s %v", st.Stage, st.Duration.Round(time.Microsecond))
		}
		if _, err := fmt.Fprintf(tw, "Stages:\t%s\n", strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, warn := range s.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warn); err != nil {
			return err
		}
	}
	return nil
}
