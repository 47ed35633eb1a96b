package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "glossify"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "GLOSSIFY"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader over the global viper instance, so flags bound
// with viper.BindPFlag take part in resolution.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWithViper creates a loader over v.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load reads the configuration from the search paths, the environment and
// the defaults, then validates it.
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithFile("")
}

// LoadWithFile loads configuration from a specific file path. An empty path
// searches the standard locations; a missing file there is not an error.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	cfg, err := l.LoadWithFileWithoutValidation(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithFileWithoutValidation is LoadWithFile without Validate.
func (l *Loader) LoadWithFileWithoutValidation(configFile string) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults and env vars only.
	}

	return l.Unmarshal()
}

// Unmarshal decodes the current settings, including bound flags, into a Config.
func (l *Loader) Unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	// translation.openai.api_key -> GLOSSIFY_TRANSLATION_OPENAI_API_KEY
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every key so that environment variables reach Unmarshal.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("translation.target_language", d.Translation.TargetLanguage)
	l.v.SetDefault("translation.source_language", d.Translation.SourceLanguage)
	l.v.SetDefault("translation.proficiency_level", d.Translation.ProficiencyLevel)
	l.v.SetDefault("translation.unknown_words", d.Translation.UnknownWords)
	l.v.SetDefault("translation.provider", d.Translation.Provider)
	l.v.SetDefault("translation.timeout", d.Translation.Timeout)
	l.v.SetDefault("translation.max_retries", d.Translation.MaxRetries)
	l.v.SetDefault("translation.openai.base_url", d.Translation.OpenAI.BaseURL)
	l.v.SetDefault("translation.openai.model", d.Translation.OpenAI.Model)
	l.v.SetDefault("translation.openai.api_key", d.Translation.OpenAI.APIKey)

	l.v.SetDefault("vocabulary.path", d.Vocabulary.Path)
	l.v.SetDefault("vocabulary.cache_ttl", d.Vocabulary.CacheTTL)
	l.v.SetDefault("vocabulary.strip_chars", d.Vocabulary.StripChars)

	l.v.SetDefault("placement.font_name", d.Placement.FontName)
	l.v.SetDefault("placement.font_size", d.Placement.FontSize)
	l.v.SetDefault("placement.line_height", d.Placement.LineHeight)
	l.v.SetDefault("placement.gap", d.Placement.Gap)
	l.v.SetDefault("placement.shift_x", d.Placement.ShiftX)
	l.v.SetDefault("placement.max_attempts", d.Placement.MaxAttempts)
	l.v.SetDefault("placement.margin", d.Placement.Margin)
	l.v.SetDefault("placement.footnote_font_size", d.Placement.FootnoteFontSize)
	l.v.SetDefault("placement.footnote_band", d.Placement.FootnoteBand)
	l.v.SetDefault("placement.color", d.Placement.Color)
	l.v.SetDefault("placement.opacity", d.Placement.Opacity)

	l.v.SetDefault("parallel.max_workers", d.Parallel.MaxWorkers)

	l.v.SetDefault("output.format", d.Output.Format)
	l.v.SetDefault("output.metrics_file", d.Output.MetricsFile)
}

// WriteYAML writes cfg as YAML. The API key is masked.
func WriteYAML(w io.Writer, cfg *Config) error {
	out := *cfg
	if out.Translation.OpenAI.APIKey != "" {
		out.Translation.OpenAI.APIKey = "********"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// GenerateDefaultConfigFile writes the default configuration to filename.
func GenerateDefaultConfigFile(filename string) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	f, err := os.Create(filename) //nolint:gosec // G304: user-chosen output path
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	d := DefaultConfig()
	if err := WriteYAML(f, &d); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigFileName))
	}

	paths = append(paths, "/etc/"+ConfigFileName)

	return paths
}
