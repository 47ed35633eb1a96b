package failure

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := Document("open", "not a PDF", errors.New("bad header")).WithPage(3)
	assert.Equal(t, "DOCUMENT_ERROR: open (page 3): not a PDF: bad header", err.Error())

	plain := Input("", "missing file", nil)
	assert.Equal(t, "INPUT_ERROR: missing file", plain.Error())
}

func TestUnwrapAndKind(t *testing.T) {
	wrapped := fmt.Errorf("running: %w", Input("stat", "cannot read input", fs.ErrNotExist))

	assert.Equal(t, KindInput, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindInput))
	assert.False(t, IsKind(wrapped, KindOutput))
	assert.ErrorIs(t, wrapped, fs.ErrNotExist)
	assert.ErrorIs(t, wrapped, &Error{Kind: KindInput})
	assert.NotErrorIs(t, wrapped, &Error{Kind: KindTranslation})

	var fe *Error
	require.ErrorAs(t, wrapped, &fe)
	assert.Equal(t, "stat", fe.Op)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindInput))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"input", Input("", "x", nil), 1},
		{"document", Document("", "x", nil), 1},
		{"lookup", Lookup("", "x", nil), 1},
		{"translation", Translation("", "x", nil), 1},
		{"output", Output("", "x", nil), 1},
		{"unclassified", errors.New("x"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{Kind: KindAnnotation, Page: 2, Word: "ubiquitous", Message: "moved to footnote"}
	assert.Equal(t, `ANNOTATION_WARNING page 2 "ubiquitous": moved to footnote`, w.String())
}
