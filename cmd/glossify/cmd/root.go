// Package cmd implements the glossify command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/revyh/glossify/internal/config"
	"github.com/revyh/glossify/internal/failure"
	"github.com/revyh/glossify/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by the subcommands of one command tree.
type app struct {
	cfgFile string
	loader  *config.Loader
	config  *config.Config
	logger  *slog.Logger
}

// NewRootCommand builds the command tree. Every call gets its own viper
// instance, so trees built in tests do not share state.
func NewRootCommand() *cobra.Command {
	a := &app{loader: config.NewLoaderWithViper(viper.New())}

	rootCmd := &cobra.Command{
		Use:   "glossify",
		Short: "Annotate PDFs with translations of difficult words",
		Long: `glossify reads a PDF, finds the words above a learner's CEFR proficiency
level, translates them and writes a copy of the PDF with each translation
placed next to its word. Words that cannot be placed inline are collected
in a footnote area at the bottom of the page.

Examples:
  glossify translate book.pdf --target-language de --proficiency-level B2
  glossify translate paper.pdf --source-language auto --format json
  glossify levels`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/glossify, /etc/glossify)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newTranslateCommand(a),
		newLevelsCommand(),
		newConfigCommand(a),
		newVocabCommand(a),
		newVersionCommand(),
	)
	return rootCmd
}

// init loads the configuration, applies the global flags and installs the
// default logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := a.loader.LoadWithFileWithoutValidation(a.cfgFile)
	if err != nil {
		return failure.Input("config", "cannot load configuration", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	a.config = cfg

	a.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	slog.SetDefault(a.logger)
	return nil
}

func logLevel(cfg *config.Config) slog.Level {
	// Verbose wins over log_level.
	if cfg.Verbose {
		return slog.LevelDebug
	}
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return run(NewRootCommand(), os.Args[1:], os.Stderr)
}

func run(rootCmd *cobra.Command, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
	}
	return failure.ExitCode(err)
}
