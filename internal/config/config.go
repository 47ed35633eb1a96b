package config

import (
	"fmt"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/revyh/glossify/internal/cefr"
	"github.com/revyh/glossify/internal/pdf"
	"github.com/revyh/glossify/internal/pipeline"
	"github.com/revyh/glossify/internal/placement"
	"github.com/revyh/glossify/internal/translate"
	"github.com/revyh/glossify/internal/vocab"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	tr := translate.DefaultConfig()
	pl := placement.DefaultConfig()
	stamp := pdf.DefaultStampStyle()

	return Config{
		LogLevel: "info",
		Verbose:  false,
		Translation: TranslationConfig{
			TargetLanguage:   "en",
			SourceLanguage:   "en",
			ProficiencyLevel: cefr.B1.String(),
			UnknownWords:     string(vocab.UnknownAccept),
			Provider:         translate.ProviderEcho,
			Timeout:          tr.Timeout,
			MaxRetries:       tr.MaxRetries,
			OpenAI: OpenAIConfig{
				Model: translate.DefaultChatModel,
			},
		},
		Vocabulary: VocabularyConfig{
			CacheTTL:   10 * time.Minute,
			StripChars: vocab.DefaultStripChars,
		},
		Placement: PlacementConfig{
			FontName:         pl.FontName,
			FontSize:         pl.FontSize,
			LineHeight:       pl.LineHeight,
			Gap:              pl.Gap,
			ShiftX:           pl.ShiftX,
			MaxAttempts:      pl.MaxAttempts,
			Margin:           pl.Margin,
			FootnoteFontSize: pl.FootnoteFontSize,
			FootnoteBand:     pl.FootnoteBand,
			Color:            stamp.FillColor,
			Opacity:          stamp.Opacity,
		},
		Parallel: ParallelConfig{
			MaxWorkers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json"}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if err := c.Translation.validate(); err != nil {
		return err
	}

	if c.Vocabulary.CacheTTL < 0 {
		return fmt.Errorf("invalid vocabulary cache ttl: %v (must not be negative)", c.Vocabulary.CacheTTL)
	}

	if err := c.toPlacementConfig().Validate(); err != nil {
		return err
	}
	if !placement.IsCoreFont(c.Placement.FontName) {
		return fmt.Errorf("invalid placement font: %s (must be a standard PDF font)", c.Placement.FontName)
	}
	if !hexColor.MatchString(c.Placement.Color) {
		return fmt.Errorf("invalid placement color: %q (must be #RRGGBB)", c.Placement.Color)
	}
	if c.Placement.Opacity <= 0 || c.Placement.Opacity > 1 {
		return fmt.Errorf("invalid placement opacity: %.2f (must be in (0, 1])", c.Placement.Opacity)
	}

	if c.Parallel.MaxWorkers <= 0 {
		return fmt.Errorf("invalid parallel max workers: %d (must be positive)", c.Parallel.MaxWorkers)
	}

	return nil
}

func (t *TranslationConfig) validate() error {
	if err := vocab.ValidateLanguage(t.TargetLanguage); err != nil {
		return fmt.Errorf("invalid target language: %w", err)
	}
	if t.SourceLanguage != pipeline.AutoLanguage {
		if err := vocab.ValidateLanguage(t.SourceLanguage); err != nil {
			return fmt.Errorf("invalid source language: %w", err)
		}
	}
	if _, err := cefr.Parse(t.ProficiencyLevel); err != nil {
		return fmt.Errorf("invalid proficiency level: %w", err)
	}
	if _, err := vocab.ParseUnknownPolicy(t.UnknownWords); err != nil {
		return err
	}
	validProviders := []string{translate.ProviderEcho, translate.ProviderOpenAI}
	if !slices.Contains(validProviders, strings.ToLower(t.Provider)) {
		return fmt.Errorf("invalid translation provider: %s (must be one of: %s)", t.Provider, strings.Join(validProviders, ", "))
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("invalid translation timeout: %v (must be positive)", t.Timeout)
	}
	if t.MaxRetries < 0 {
		return fmt.Errorf("invalid translation max retries: %d (must not be negative)", t.MaxRetries)
	}
	return nil
}

// Threshold returns the parsed proficiency level.
func (c *Config) Threshold() (cefr.Level, error) {
	return cefr.Parse(c.Translation.ProficiencyLevel)
}

// ToPipelineOptions converts the config to the pipeline stage configuration.
func (c *Config) ToPipelineOptions() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Workers = c.Parallel.MaxWorkers

	policy, err := vocab.ParseUnknownPolicy(c.Translation.UnknownWords)
	if err != nil {
		policy = vocab.UnknownAccept
	}
	cfg.Classifier = vocab.ClassifierConfig{
		Unknown:    policy,
		StripChars: c.Vocabulary.StripChars,
		Workers:    c.Parallel.MaxWorkers,
	}

	cfg.Translate.Timeout = c.Translation.Timeout
	cfg.Translate.MaxRetries = c.Translation.MaxRetries

	cfg.Placement = c.toPlacementConfig()
	cfg.Stamp = pdf.StampStyle{
		FontName:  c.Placement.FontName,
		FillColor: c.Placement.Color,
		Opacity:   c.Placement.Opacity,
	}
	return cfg
}

// ToProviderConfig returns the translation provider selection.
func (c *Config) ToProviderConfig() translate.ProviderConfig {
	return translate.ProviderConfig{
		Name:    c.Translation.Provider,
		BaseURL: c.Translation.OpenAI.BaseURL,
		Model:   c.Translation.OpenAI.Model,
		APIKey:  c.Translation.OpenAI.APIKey,
	}
}

func (c *Config) toPlacementConfig() placement.Config {
	return placement.Config{
		FontName:         c.Placement.FontName,
		FontSize:         c.Placement.FontSize,
		LineHeight:       c.Placement.LineHeight,
		Gap:              c.Placement.Gap,
		ShiftX:           c.Placement.ShiftX,
		MaxAttempts:      c.Placement.MaxAttempts,
		Margin:           c.Placement.Margin,
		FootnoteFontSize: c.Placement.FootnoteFontSize,
		FootnoteBand:     c.Placement.FootnoteBand,
	}
}
