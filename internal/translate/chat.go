package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultChatModel is used when ChatConfig.Model is empty.
const DefaultChatModel = "gpt-4o-mini"

// ChatConfig configures a ChatProvider.
type ChatConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

// generator is the part of an eino chat model the provider uses.
type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ChatProvider translates words with an OpenAI-compatible chat model.
type ChatProvider struct {
	model generator
	name  string
}

// NewChatProvider creates a provider backed by an OpenAI-compatible endpoint.
func NewChatProvider(ctx context.Context, cfg ChatConfig) (*ChatProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai provider requires an API key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultChatModel
	}

	chatModelConfig := &openai.ChatModelConfig{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
	}
	if cfg.BaseURL != "" {
		chatModelConfig.BaseURL = cfg.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, chatModelConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return &ChatProvider{model: chatModel, name: ProviderOpenAI}, nil
}

func newChatProviderWithModel(g generator) *ChatProvider {
	return &ChatProvider{model: g, name: ProviderOpenAI}
}

// Translate implements Provider.
func (p *ChatProvider) Translate(ctx context.Context, words []string, target string) ([]string, error) {
	if len(words) == 0 {
		return nil, nil
	}
	resp, err := p.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(buildSystemPrompt(target)),
		schema.UserMessage(buildUserPrompt(words)),
	})
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	if resp == nil {
		return nil, &ProviderError{Provider: p.name, Message: "empty response", Temporary: true}
	}

	out, err := parseResponse(resp.Content, len(words))
	if err != nil {
		return nil, &ProviderError{Provider: p.name, Message: "malformed response", Temporary: true, Err: err}
	}
	return out, nil
}

func buildSystemPrompt(target string) string {
	return fmt.Sprintf(`You translate single words for language learners into the language with code %q.
Reply with a JSON array of strings only, one translation per input word, in input order.
Use an empty string for a word you cannot translate. Do not add explanations.`, target)
}

func buildUserPrompt(words []string) string {
	b, _ := json.Marshal(words)
	return string(b)
}

// parseResponse accepts a JSON string array, optionally inside a code fence
// or surrounded by prose, and falls back to one translation per line.
func parseResponse(content string, want int) ([]string, error) {
	content = strings.TrimSpace(content)
	if start, end := strings.Index(content, "["), strings.LastIndex(content, "]"); start >= 0 && end > start {
		var out []string
		if err := json.Unmarshal([]byte(content[start:end+1]), &out); err == nil {
			return out, nil
		}
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) != want {
		return nil, fmt.Errorf("expected %d translations, got %d lines", want, len(lines))
	}
	return lines, nil
}

// classify maps a model error onto a ProviderError. Rate limits, server
// errors and network failures are temporary; auth and request errors are not.
func (p *ChatProvider) classify(ctx context.Context, err error) error {
	pe := &ProviderError{Provider: p.name, Message: "request failed", Err: err}
	if ctx.Err() != nil || IsTemporary(err) {
		pe.Temporary = ctx.Err() == nil || errors.Is(ctx.Err(), context.DeadlineExceeded)
		return pe
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "401", "403", "unauthorized", "invalid api key", "authentication"):
		pe.Message = "authentication failed"
	case containsAny(msg, "400", "invalid request", "bad request"):
		pe.Message = "invalid request"
	case containsAny(msg, "429", "rate limit"):
		pe.Message = "rate limited"
		pe.Temporary = true
	case containsAny(msg, "500", "502", "503", "504", "server error", "overloaded"):
		pe.Message = "server error"
		pe.Temporary = true
	case containsAny(msg, "connection", "timeout", "network", "eof", "reset by peer"):
		pe.Temporary = true
	}
	return pe
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
