package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/matscript/material"
)

func TestError_Is(t *testing.T) {
	err := ErrLoadScript.Wrap(material.ErrGrammar).With(slog.String("file", "a"))

	assert.ErrorIs(t, err, ErrLoadScript)
	assert.ErrorIs(t, err, material.ErrGrammar)
	assert.NotErrorIs(t, err, ErrWriteConfig)
	assert.NotErrorIs(t, ErrLoadScript, err)

	wrapped := fmt.Errorf("run: %w", err)
	assert.ErrorIs(t, wrapped, ErrLoadScript)
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "unknown material", ErrUnknownMaterial.Error())
	assert.Equal(t,
		"write configuration file: file exists (use --force to overwrite)",
		ErrWriteConfig.Wrap(ErrFileExists).Error())
	assert.Equal(t, "boom", NewError("").Wrap(errors.New("boom")).Error())
}

func TestError_With(t *testing.T) {
	base := ErrUnknownMaterial.With(slog.String("name", "A"))
	extended := base.With(slog.Int("n", 1))

	assert.Len(t, base.attrs, 1)
	assert.Len(t, extended.attrs, 2)
	assert.Empty(t, ErrUnknownMaterial.attrs)
}

func TestError_LogValue(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Error("failed", slog.Any("error",
		ErrLoadScript.Wrap(errors.New("boom")).With(slog.String("file", "x.material"))))

	out := buf.String()
	assert.Contains(t, out, `error.error="load material script"`)
	assert.Contains(t, out, "error.cause=boom")
	assert.Contains(t, out, "error.file=x.material")
}

func TestSnippet(t *testing.T) {
	const src = "material Foo }"

	_, err := material.ParseString(t.Context(), src)
	require.ErrorIs(t, err, material.ErrGrammar)

	e := ErrLoadScript.Wrap(err).withSource(src)
	assert.Equal(t, "  1 | material Foo }\n"+strings.Repeat(" ", 19)+"^\n", Snippet(e))
	assert.Equal(t, Snippet(e), Snippet(fmt.Errorf("outer: %w", e)))

	assert.Empty(t, Snippet(errors.New("plain")))
	assert.Empty(t, Snippet(ErrLoadScript.Wrap(errors.New("plain")).withSource("x")))
	assert.Empty(t, Snippet(nil))
}
