package config

import (
	"strings"
	"testing"
	"time"

	"github.com/revyh/glossify/internal/cefr"
	"github.com/revyh/glossify/internal/vocab"
)

const (
	infoLevel  = "info"
	debugLevel = "debug"
)

// TestDefaultConfig tests that the defaults are valid and match the stage defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig() is invalid: %v", err)
	}
	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected log level %q, got %q", infoLevel, cfg.LogLevel)
	}
	if cfg.Translation.ProficiencyLevel != "B1" {
		t.Errorf("Expected proficiency level B1, got %q", cfg.Translation.ProficiencyLevel)
	}
	if cfg.Translation.Provider != "echo" {
		t.Errorf("Expected echo provider, got %q", cfg.Translation.Provider)
	}
	if cfg.Translation.UnknownWords != "accept" {
		t.Errorf("Expected unknown words accept, got %q", cfg.Translation.UnknownWords)
	}
	if cfg.Placement.FontName != "Helvetica" {
		t.Errorf("Expected Helvetica, got %q", cfg.Placement.FontName)
	}
	if cfg.Parallel.MaxWorkers <= 0 {
		t.Errorf("Expected positive max workers, got %d", cfg.Parallel.MaxWorkers)
	}
}

// TestValidate tests rejection of invalid values.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"format", func(c *Config) { c.Output.Format = "csv" }, "invalid output format"},
		{"target language", func(c *Config) { c.Translation.TargetLanguage = "" }, "invalid target language"},
		{"source language", func(c *Config) { c.Translation.SourceLanguage = "e!" }, "invalid source language"},
		{"proficiency", func(c *Config) { c.Translation.ProficiencyLevel = "D1" }, "invalid proficiency level"},
		{"unknown words", func(c *Config) { c.Translation.UnknownWords = "ignore" }, "unknown-word policy"},
		{"provider", func(c *Config) { c.Translation.Provider = "babelfish" }, "invalid translation provider"},
		{"timeout", func(c *Config) { c.Translation.Timeout = 0 }, "invalid translation timeout"},
		{"retries", func(c *Config) { c.Translation.MaxRetries = -1 }, "max retries"},
		{"cache ttl", func(c *Config) { c.Vocabulary.CacheTTL = -time.Second }, "cache ttl"},
		{"font size", func(c *Config) { c.Placement.FontSize = 0 }, "font size"},
		{"font name", func(c *Config) { c.Placement.FontName = "Comic Sans" }, "invalid placement font"},
		{"color", func(c *Config) { c.Placement.Color = "blue" }, "invalid placement color"},
		{"opacity", func(c *Config) { c.Placement.Opacity = 1.5 }, "invalid placement opacity"},
		{"workers", func(c *Config) { c.Parallel.MaxWorkers = 0 }, "invalid parallel max workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

// TestValidateAutoSourceLanguage tests that "auto" is accepted as source language.
func TestValidateAutoSourceLanguage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Translation.SourceLanguage = "auto"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

// TestToPipelineOptions tests conversion to the stage configuration.
func TestToPipelineOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Parallel.MaxWorkers = 3
	cfg.Translation.UnknownWords = "flag"
	cfg.Translation.Timeout = 5 * time.Second
	cfg.Translation.MaxRetries = 1
	cfg.Vocabulary.StripChars = ".,"
	cfg.Placement.FontName = "Times-Roman"
	cfg.Placement.FontSize = 8
	cfg.Placement.Color = "#112233"
	cfg.Placement.Opacity = 0.5

	p := cfg.ToPipelineOptions()

	if p.Workers != 3 {
		t.Errorf("Workers = %d, want 3", p.Workers)
	}
	if p.Classifier.Unknown != vocab.UnknownFlag {
		t.Errorf("Classifier.Unknown = %q, want flag", p.Classifier.Unknown)
	}
	if p.Classifier.StripChars != ".," {
		t.Errorf("Classifier.StripChars = %q", p.Classifier.StripChars)
	}
	if p.Translate.Timeout != 5*time.Second || p.Translate.MaxRetries != 1 {
		t.Errorf("Translate = %+v", p.Translate)
	}
	if p.Placement.FontName != "Times-Roman" || p.Placement.FontSize != 8 {
		t.Errorf("Placement = %+v", p.Placement)
	}
	if p.Stamp.FontName != "Times-Roman" {
		t.Errorf("Stamp.FontName = %q, want the placement font", p.Stamp.FontName)
	}
	if p.Stamp.FillColor != "#112233" || p.Stamp.Opacity != 0.5 {
		t.Errorf("Stamp = %+v", p.Stamp)
	}
}

// TestThreshold tests proficiency level parsing.
func TestThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Translation.ProficiencyLevel = "c1"
	lvl, err := cfg.Threshold()
	if err != nil {
		t.Fatalf("Threshold() error: %v", err)
	}
	if lvl != cefr.C1 {
		t.Errorf("Threshold() = %v, want C1", lvl)
	}
}

// TestToProviderConfig tests provider selection.
func TestToProviderConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Translation.Provider = "openai"
	cfg.Translation.OpenAI = OpenAIConfig{BaseURL: "http://localhost:8080/v1", Model: "m", APIKey: "k"}

	p := cfg.ToProviderConfig()
	if p.Name != "openai" || p.BaseURL != "http://localhost:8080/v1" || p.Model != "m" || p.APIKey != "k" {
		t.Errorf("ToProviderConfig() = %+v", p)
	}
}
