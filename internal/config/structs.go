//nolint:lll
package config

import "time"

// Config represents the complete configuration for glossify. It is loaded
// from configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Translation settings
	Translation TranslationConfig `mapstructure:"translation" yaml:"translation" json:"translation"`

	// Vocabulary backend
	Vocabulary VocabularyConfig `mapstructure:"vocabulary" yaml:"vocabulary" json:"vocabulary"`

	// Annotation geometry and style
	Placement PlacementConfig `mapstructure:"placement" yaml:"placement" json:"placement"`

	// Parallel processing
	Parallel ParallelConfig `mapstructure:"parallel" yaml:"parallel" json:"parallel"`

	// Summary and metrics output
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// TranslationConfig selects languages, the proficiency threshold and the provider.
type TranslationConfig struct {
	TargetLanguage   string        `mapstructure:"target_language" yaml:"target_language" json:"target_language"`
	SourceLanguage   string        `mapstructure:"source_language" yaml:"source_language" json:"source_language"`
	ProficiencyLevel string        `mapstructure:"proficiency_level" yaml:"proficiency_level" json:"proficiency_level"`
	UnknownWords     string        `mapstructure:"unknown_words" yaml:"unknown_words" json:"unknown_words"`
	Provider         string        `mapstructure:"provider" yaml:"provider" json:"provider"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	MaxRetries       int           `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`

	OpenAI OpenAIConfig `mapstructure:"openai" yaml:"openai" json:"openai"`
}

// OpenAIConfig configures the OpenAI-compatible chat provider.
type OpenAIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	Model   string `mapstructure:"model" yaml:"model" json:"model"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key" json:"-"`
}

// VocabularyConfig selects the word-level corpus.
type VocabularyConfig struct {
	Path       string        `mapstructure:"path" yaml:"path" json:"path"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"`
	StripChars string        `mapstructure:"strip_chars" yaml:"strip_chars" json:"strip_chars"`
}

// PlacementConfig contains annotation geometry and style. Lengths are in points.
type PlacementConfig struct {
	FontName         string  `mapstructure:"font_name" yaml:"font_name" json:"font_name"`
	FontSize         float64 `mapstructure:"font_size" yaml:"font_size" json:"font_size"`
	LineHeight       float64 `mapstructure:"line_height" yaml:"line_height" json:"line_height"`
	Gap              float64 `mapstructure:"gap" yaml:"gap" json:"gap"`
	ShiftX           float64 `mapstructure:"shift_x" yaml:"shift_x" json:"shift_x"`
	MaxAttempts      int     `mapstructure:"max_attempts" yaml:"max_attempts" json:"max_attempts"`
	Margin           float64 `mapstructure:"margin" yaml:"margin" json:"margin"`
	FootnoteFontSize float64 `mapstructure:"footnote_font_size" yaml:"footnote_font_size" json:"footnote_font_size"`
	FootnoteBand     float64 `mapstructure:"footnote_band" yaml:"footnote_band" json:"footnote_band"`
	Color            string  `mapstructure:"color" yaml:"color" json:"color"`
	Opacity          float64 `mapstructure:"opacity" yaml:"opacity" json:"opacity"`
}

// ParallelConfig contains parallel processing settings.
type ParallelConfig struct {
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" json:"max_workers"`
}

// OutputConfig contains summary formatting settings.
type OutputConfig struct {
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file"`
}
