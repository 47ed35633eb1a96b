package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/revyh/glossify/internal/config"
	"github.com/revyh/glossify/internal/failure"
	"github.com/revyh/glossify/internal/pdf"
	"github.com/revyh/glossify/internal/pipeline"
	"github.com/revyh/glossify/internal/translate"
	"github.com/revyh/glossify/internal/vocab"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTranslateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <input_file>",
		Short: "Annotate a PDF with translations of words above a proficiency level",
		Long: `Annotate a PDF with translations of the words above the given CEFR level.

The annotated copy is written next to the input as <name>_translated.pdf
unless --output is given. A run summary is printed to stdout.

Examples:
  glossify translate book.pdf
  glossify translate book.pdf --target-language de --proficiency-level B2
  glossify translate locked.pdf --password secret --pages 1-3
  glossify translate book.pdf --vocab words.db --provider openai --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTranslate(cmd, args[0])
		},
	}

	d := config.DefaultConfig()
	f := cmd.Flags()
	f.String("target-language", d.Translation.TargetLanguage, "language to translate into")
	f.String("source-language", d.Translation.SourceLanguage, "language of the document, or auto")
	f.String("proficiency-level", d.Translation.ProficiencyLevel, "learner level (A1, A2, B1, B2, C1, C2)")
	f.StringP("output", "o", "", "output file (default: <input>_translated.<ext>)")
	f.StringP("password", "p", "", "user password for encrypted PDFs")
	f.String("owner-password", "", "owner password for encrypted PDFs")
	f.String("pages", "", "page range to annotate (e.g., '1-5', '1,3,5')")
	f.String("unknown-words", d.Translation.UnknownWords, "treatment of words missing from the vocabulary (accept, flag)")
	f.String("vocab", d.Vocabulary.Path, "word-level vocabulary (.yaml or .db; default: builtin list)")
	f.String("provider", d.Translation.Provider, "translation provider (echo, openai)")
	f.Int("workers", 0, "page workers (0=NumCPU)")
	f.StringP("format", "f", d.Output.Format, "summary format (text, json)")
	f.String("metrics-file", "", "write Prometheus text metrics to this file")
	f.Bool("progress", false, "draw a progress bar on stderr")
	return cmd
}

// applyTranslateFlags overrides configuration values with flags the user set.
func applyTranslateFlags(cfg *config.Config, f *pflag.FlagSet) {
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	str("target-language", &cfg.Translation.TargetLanguage)
	str("source-language", &cfg.Translation.SourceLanguage)
	str("proficiency-level", &cfg.Translation.ProficiencyLevel)
	str("unknown-words", &cfg.Translation.UnknownWords)
	str("vocab", &cfg.Vocabulary.Path)
	str("provider", &cfg.Translation.Provider)
	str("format", &cfg.Output.Format)
	str("metrics-file", &cfg.Output.MetricsFile)
	if f.Changed("workers") {
		if n, _ := f.GetInt("workers"); n > 0 {
			cfg.Parallel.MaxWorkers = n
		}
	}
}

func (a *app) runTranslate(cmd *cobra.Command, input string) error {
	cfg := *a.config
	applyTranslateFlags(&cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return failure.Input("config", err.Error(), nil)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := vocab.Open(ctx, cfg.Vocabulary.Path, cfg.Vocabulary.CacheTTL)
	if err != nil {
		return failure.Input("vocab", "cannot open vocabulary", err)
	}
	defer func() { _ = source.Close() }()

	provider, err := translate.NewProvider(ctx, cfg.ToProviderConfig())
	if err != nil {
		return failure.Input("provider", "cannot create translation provider", err)
	}

	req, err := translateRequest(cmd, input, &cfg)
	if err != nil {
		return err
	}

	var progress pipeline.ProgressCallback = pipeline.NewLogProgressCallback(a.logger, slog.LevelDebug)
	if show, _ := cmd.Flags().GetBool("progress"); show {
		progress = pipeline.NewMultiProgressCallback(
			pipeline.NewConsoleProgressCallback(cmd.ErrOrStderr(), "Placing: "),
			progress,
		)
	}

	metrics := pipeline.NewMetrics()
	opts := []pipeline.Option{
		pipeline.WithLogger(a.logger),
		pipeline.WithMetrics(metrics),
		pipeline.WithProgress(progress),
	}

	a.logger.Debug("starting translation",
		"input", input,
		"vocabulary", source.Kind,
		"provider", cfg.Translation.Provider,
		"workers", cfg.Parallel.MaxWorkers)

	controller := pipeline.NewController(source.Lookup, provider, cfg.ToPipelineOptions(), opts...)
	summary, runErr := controller.Run(ctx, req)

	if cfg.Output.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			a.logger.Warn("cannot write metrics file", "path", cfg.Output.MetricsFile, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	return writeSummary(cmd, summary, cfg.Output.Format)
}

func translateRequest(cmd *cobra.Command, input string, cfg *config.Config) (pipeline.Request, error) {
	f := cmd.Flags()
	output, _ := f.GetString("output")
	pages, _ := f.GetString("pages")
	password, _ := f.GetString("password")
	ownerPassword, _ := f.GetString("owner-password")

	threshold, err := cfg.Threshold()
	if err != nil {
		return pipeline.Request{}, failure.Input("config", err.Error(), nil)
	}
	req := pipeline.Request{
		Input:          input,
		Output:         output,
		SourceLanguage: cfg.Translation.SourceLanguage,
		TargetLanguage: cfg.Translation.TargetLanguage,
		Threshold:      threshold,
		Pages:          pages,
	}
	if password != "" || ownerPassword != "" {
		req.Credentials = &pdf.PasswordCredentials{UserPassword: password, OwnerPassword: ownerPassword}
	}
	return req, nil
}

func writeSummary(cmd *cobra.Command, summary *pipeline.Summary, format string) error {
	out := cmd.OutOrStdout()
	var err error
	if format == "json" {
		err = summary.WriteJSON(out)
	} else {
		err = summary.WriteText(out)
	}
	if err != nil {
		return failure.Output("summary", "cannot write summary", err)
	}
	return nil
}
