// Package translate obtains translations for flagged words from a Provider.
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
)

// Provider translates a batch of words. The result has one entry per input
// word, in input order. An empty entry means the word could not be
// translated. Implementations must be safe for concurrent use.
type Provider interface {
	Translate(ctx context.Context, words []string, target string) ([]string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, words []string, target string) ([]string, error)

// Translate implements Provider.
func (f ProviderFunc) Translate(ctx context.Context, words []string, target string) ([]string, error) {
	return f(ctx, words, target)
}

// ProviderError is a failed provider call. Temporary errors are retried.
type ProviderError struct {
	Provider  string
	Message   string
	Temporary bool
	Err       error
}

func (e *ProviderError) Error() string {
	msg := e.Provider + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTemporary reports whether err is worth retrying: a temporary
// ProviderError, a timed out attempt, a network timeout, or a failed dial,
// read or write such as a refused or reset connection.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Temporary
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var op *net.OpError
	if errors.As(err, &op) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// TranslationPair is one translated word.
type TranslationPair struct {
	Source         string `json:"source"`
	Translated     string `json:"translated"`
	TargetLanguage string `json:"target_language"`
}

// EchoProvider returns "<word> [<target>]" for every word. It needs no
// network access and is the default provider.
type EchoProvider struct{}

// Translate implements Provider.
func (EchoProvider) Translate(ctx context.Context, words []string, target string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = fmt.Sprintf("%s [%s]", w, target)
	}
	return out, nil
}

// Provider names accepted by NewProvider.
const (
	ProviderEcho   = "echo"
	ProviderOpenAI = "openai"
)

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Name    string
	BaseURL string
	Model   string
	APIKey  string
}

// NewProvider builds the named provider.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Name) {
	case "", ProviderEcho:
		return EchoProvider{}, nil
	case ProviderOpenAI:
		return NewChatProvider(ctx, ChatConfig{BaseURL: cfg.BaseURL, Model: cfg.Model, APIKey: cfg.APIKey})
	default:
		return nil, fmt.Errorf("unknown translation provider %q (must be %s or %s)", cfg.Name, ProviderEcho, ProviderOpenAI)
	}
}
