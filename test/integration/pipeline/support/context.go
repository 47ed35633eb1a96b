// Package support holds the step definitions of the pipeline feature suite.
package support

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/revyh/glossify/internal/pipeline"
	"github.com/revyh/glossify/internal/testutil"
	"github.com/revyh/glossify/internal/translate"
	"github.com/revyh/glossify/internal/vocab"
)

// CountingProvider echoes words and records every batch.
type CountingProvider struct {
	mu      sync.Mutex
	Batches [][]string
}

// Translate implements translate.Provider.
func (p *CountingProvider) Translate(ctx context.Context, words []string, target string) ([]string, error) {
	p.mu.Lock()
	p.Batches = append(p.Batches, append([]string(nil), words...))
	p.mu.Unlock()
	return translate.EchoProvider{}.Translate(ctx, words, target)
}

// Calls returns the number of provider calls.
func (p *CountingProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Batches)
}

// TestContext holds the state of one scenario.
type TestContext struct {
	TempDir string

	// Document under test
	Pages      []testutil.PageSpec
	Input      string
	InputBytes []byte

	// Collaborators
	Lookup   vocab.Lookup
	Provider *CountingProvider

	// Last pipeline run
	Summary   *pipeline.Summary
	LastError error

	// Last CLI run
	LastStdout   string
	LastStderr   string
	LastExitCode int
}

// NewTestContext creates a scenario context with a fresh temp directory.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "glossify-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{
		TempDir:  tempDir,
		Lookup:   vocab.Builtin(),
		Provider: &CountingProvider{},
	}, nil
}

// Cleanup removes the scenario's temp directory.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.TempDir == "" {
		return nil
	}
	if err := os.RemoveAll(testCtx.TempDir); err != nil {
		return fmt.Errorf("failed to remove temp directory: %w", err)
	}
	return nil
}

// writeInput writes the collected pages as the input PDF, once.
func (testCtx *TestContext) writeInput() error {
	if testCtx.Input != "" {
		return nil
	}
	path := filepath.Join(testCtx.TempDir, "input.pdf")
	data := testutil.BuildPDF(testCtx.Pages...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write input PDF: %w", err)
	}
	testCtx.Input = path
	testCtx.InputBytes = data
	return nil
}

// OutputPath is where runs of this scenario write their result.
func (testCtx *TestContext) OutputPath() string {
	return pipeline.DefaultOutputPath(testCtx.Input)
}
