package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/matscript/pkg"
)

func TestVersion_Run(t *testing.T) {
	streams, out, _ := testStreams("")

	require.NoError(t, (&Version{}).Run(streams))
	assert.Equal(t, pkg.Name+" "+pkg.Version()+"\n", out.String())

	out.Reset()

	require.NoError(t, (&Version{Short: true}).Run(streams))
	assert.Equal(t, pkg.Version()+"\n", out.String())
}
