package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revyh/glossify/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs a fresh command tree from an empty working directory.
func execute(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	code = run(root, args, &errOut)
	return out.String(), errOut.String(), code
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "glossify", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.NotEmpty(t, root.Long)

	names := make([]string, 0)
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"translate", "levels", "config", "vocab", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommandHelp(t *testing.T) {
	out, _, code := execute(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "CEFR proficiency")
	assert.Contains(t, out, "Available Commands:")
}

func TestRootCommandVersion(t *testing.T) {
	out, _, code := execute(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "dev")

	out, _, code = execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "glossify version dev")
}

func TestRootCommandInvalidFlag(t *testing.T) {
	_, errOut, code := execute(t, "--no-such-flag")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown flag")
}

func TestLevelsCommand(t *testing.T) {
	out, _, code := execute(t, "levels")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "A1")
	assert.Contains(t, lines[0], "Beginner")
	assert.Contains(t, lines[5], "C2")
}

func TestConfigCommand(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		t.Setenv("GLOSSIFY_TRANSLATION_TARGET_LANGUAGE", "it")
		t.Setenv("GLOSSIFY_TRANSLATION_OPENAI_API_KEY", "sk-hidden")
		out, _, code := execute(t, "config")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "target_language: it")
		assert.NotContains(t, out, "sk-hidden")
	})

	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("translation:\n  proficiency_level: C1\n"), 0o600))
		out, _, code := execute(t, "--config", path, "config")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "# "+path)
		assert.Contains(t, out, "proficiency_level: C1")
	})

	t.Run("missing file", func(t *testing.T) {
		_, errOut, code := execute(t, "--config", "/does/not/exist.yaml", "config")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "INPUT_ERROR")
	})

	t.Run("init", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "glossify.yaml")
		out, _, code := execute(t, "config", "--init", path)
		require.Equal(t, 0, code)
		assert.Contains(t, out, "Wrote")
		assert.FileExists(t, path)
	})
}

func TestVocabCommands(t *testing.T) {
	dir := t.TempDir()
	words := filepath.Join(dir, "words.yaml")
	require.NoError(t, os.WriteFile(words, []byte("en:\n  serendipity: C2\n  house: A1\n"), 0o600))
	db := filepath.Join(dir, "vocab.db")

	out, errOut, code := execute(t, "vocab", "import", words, db)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Imported 2 words")
	assert.FileExists(t, db)

	out, _, code = execute(t, "vocab", "builtin")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "ubiquitous: C2")
}

func TestLogLevel(t *testing.T) {
	tests := map[string]string{"debug": "DEBUG", "warn": "WARN", "error": "ERROR", "bogus": "INFO"}
	for in, want := range tests {
		cfg := config.DefaultConfig()
		cfg.LogLevel = in
		assert.Equal(t, want, logLevel(&cfg).String(), in)
	}
	cfg := config.DefaultConfig()
	cfg.LogLevel = "error"
	cfg.Verbose = true
	assert.Equal(t, "DEBUG", logLevel(&cfg).String())
}
