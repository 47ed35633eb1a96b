package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/revyh/glossify/internal/failure"
	"github.com/revyh/glossify/internal/vocab"
)

// Config controls timeouts and retries of provider calls.
type Config struct {
	Timeout         time.Duration // per attempt
	MaxRetries      int           // retries after the first attempt
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig returns the default retry policy.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// Result describes one orchestrated translation.
type Result struct {
	Pairs        map[string]TranslationPair
	Warnings     []failure.Warning
	Requested    int
	Untranslated int
	Attempts     int
}

// Orchestrator batches flagged words into a single provider call.
type Orchestrator struct {
	provider Provider
	cfg      Config
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator. Zero config fields take their defaults.
func NewOrchestrator(provider Provider, cfg Config, logger *slog.Logger) *Orchestrator {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{provider: provider, cfg: cfg, logger: logger}
}

// Translate maps every flagged word to its translation. Words the provider
// left empty are excluded and reported as warnings.
func (o *Orchestrator) Translate(ctx context.Context, flagged []vocab.FlaggedWord, target string) (map[string]TranslationPair, []failure.Warning, error) {
	res, err := o.Run(ctx, flagged, target)
	if err != nil {
		return nil, nil, err
	}
	return res.Pairs, res.Warnings, nil
}

// Run is Translate with call statistics.
func (o *Orchestrator) Run(ctx context.Context, flagged []vocab.FlaggedWord, target string) (*Result, error) {
	words := distinctWords(flagged)
	res := &Result{Pairs: make(map[string]TranslationPair, len(words)), Requested: len(words)}
	if len(words) == 0 {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, failure.Cancelled("translate", err)
	}

	start := time.Now()
	out, err := o.call(ctx, words, target, &res.Attempts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, failure.Cancelled("translate", ctx.Err())
		}
		return nil, failure.Translation("translate",
			fmt.Sprintf("provider failed after %d attempt(s)", res.Attempts), err)
	}
	if len(out) != len(words) {
		return nil, failure.Translation("translate",
			fmt.Sprintf("provider returned %d translations for %d words", len(out), len(words)), nil)
	}

	for i, w := range words {
		translated := strings.TrimSpace(out[i])
		if translated == "" {
			res.Untranslated++
			res.Warnings = append(res.Warnings, failure.Warning{
				Kind:    failure.KindTranslation,
				Word:    w,
				Message: "provider returned no translation",
			})
			continue
		}
		res.Pairs[w] = TranslationPair{Source: w, Translated: translated, TargetLanguage: target}
	}

	o.logger.Debug("translated words",
		"target", target,
		"words", len(words),
		"untranslated", res.Untranslated,
		"attempts", res.Attempts,
		"duration", time.Since(start))
	return res, nil
}

func (o *Orchestrator) call(ctx context.Context, words []string, target string, attempts *int) ([]string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.cfg.InitialInterval
	b.MaxInterval = o.cfg.MaxInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(o.cfg.MaxRetries)), ctx)

	return backoff.RetryWithData(func() ([]string, error) {
		*attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()

		out, err := o.provider.Translate(attemptCtx, words, target)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil || !IsTemporary(err) {
			return nil, backoff.Permanent(err)
		}
		o.logger.Warn("translation attempt failed, retrying",
			"attempt", *attempts,
			"error", err)
		return nil, err
	}, policy)
}

func distinctWords(flagged []vocab.FlaggedWord) []string {
	seen := make(map[string]bool, len(flagged))
	words := make([]string, 0, len(flagged))
	for _, f := range flagged {
		if f.Normalized == "" || seen[f.Normalized] {
			continue
		}
		seen[f.Normalized] = true
		words = append(words, f.Normalized)
	}
	return words
}
