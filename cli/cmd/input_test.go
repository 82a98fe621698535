package cmd

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/matscript/material"
)

func TestLoad_Stdin(t *testing.T) {
	streams, _, _ := testStreams(greyGray)

	f, err := load(t.Context(), streams, material.NewCache(), stdinSource)
	require.NoError(t, err)
	assert.Equal(t, greyGray, f.Source())
	assert.Empty(t, f.Path())

	names, err := f.Names(t.Context(), materialKind)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gazebo/Grey", "Gazebo/Gray", "Gazebo/Red"}, names)
}

func TestLoad_StdinSnippet(t *testing.T) {
	src := "material A\n{\n}\nmaterial B : Missing\n{\n}\n"
	streams, _, _ := testStreams(src)

	_, err := load(t.Context(), streams, material.NewCache(), "")
	require.ErrorIs(t, err, material.ErrUnresolvedBase)
	require.ErrorIs(t, err, ErrLoadScript)
	assert.True(t, strings.HasPrefix(Snippet(err), "  4 | material B : Missing\n"))
}

func TestLoad_StdinReadError(t *testing.T) {
	cause := errors.New("broken pipe")
	streams, _, _ := testStreams("")
	streams.In = iotest.ErrReader(cause)

	_, err := load(t.Context(), streams, material.NewCache(), stdinSource)
	require.ErrorIs(t, err, ErrLoadScript)
	assert.ErrorIs(t, err, material.ErrReadInput)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, Snippet(err))
}
