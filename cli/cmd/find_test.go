package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/matscript/material"
)

const greyGray = `
material Gazebo/Grey
{
  technique
  {
    pass main
    {
      ambient .3 .3 .3 1.0
      diffuse .7 .7 .7 1.0
    }
  }
}

material Gazebo/Gray : Gazebo/Grey
{
}

material Gazebo/Red
{
  technique
  {
    pass
    {
      ambient 1 0 0
    }
  }
}
`

// testStreams returns streams reading stdin and capturing output.
func testStreams(stdin string) (*Streams, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer

	return &Streams{In: strings.NewReader(stdin), Out: &out, Err: &errOut}, &out, &errOut
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestFind_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "gazebo.material", greyGray)
	streams, out, _ := testStreams("")

	f := &Find{
		Input:  Input{File: path},
		Output: outputText,
		Indent: 2,
		Query:  "material.technique.pass.ambient",
	}

	require.NoError(t, f.Run(t.Context(), streams, material.NewCache()))

	assert.Equal(t,
		"material:Gazebo/Grey.technique.pass:main.ambient\t.3 .3 .3 1.0\n"+
			"material:Gazebo/Gray.technique.pass:main.ambient\t.3 .3 .3 1.0\n"+
			"material:Gazebo/Red.technique.pass.ambient\t1 0 0\n",
		out.String())
}

func TestFind_Where(t *testing.T) {
	streams, out, _ := testStreams(greyGray)

	f := &Find{
		Input:  Input{File: stdinSource},
		Where:  `len(args) == 3`,
		Output: outputText,
		Query:  "material.technique.pass.ambient",
	}

	require.NoError(t, f.Run(t.Context(), streams, material.NewCache()))
	assert.Equal(t, "material:Gazebo/Red.technique.pass.ambient\t1 0 0\n", out.String())

	f.Where = "args +"
	assert.ErrorIs(t, f.Run(t.Context(), streams, material.NewCache()), material.ErrInvalidFilter)
}

func TestFind_JSON(t *testing.T) {
	streams, out, _ := testStreams(greyGray)

	f := &Find{
		Input:  Input{File: stdinSource},
		Output: outputJSON,
		Query:  `material[name="Gazebo/Gray"].technique.pass`,
	}

	require.NoError(t, f.Run(t.Context(), streams, material.NewCache()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "pass", got[0]["kind"])
	assert.Equal(t, "main", got[0]["name"])
}

func TestFind_Native(t *testing.T) {
	streams, out, _ := testStreams(greyGray)

	f := &Find{
		Input:  Input{File: stdinSource},
		Output: outputNative,
		Indent: 2,
		Query:  `material[name="Gazebo/Red"].technique.pass.ambient`,
	}

	require.NoError(t, f.Run(t.Context(), streams, material.NewCache()))
	assert.Equal(t, "ambient 1 0 0\n", out.String())
}

func TestFind_Imports(t *testing.T) {
	dir := t.TempDir()
	lib := t.TempDir()

	writeFile(t, lib, "gazebo.material", greyGray)
	main := writeFile(t, dir, "main.material",
		"import * from \"gazebo.material\"\n"+
			"material Custom : Gazebo/Red\n{\n}\n")

	// Bases must be declared in the same script, so Custom fails to
	// resolve while the imported script is still searched.
	streams, _, _ := testStreams("")
	f := &Find{Input: Input{File: main, Include: []string{lib}}, Query: "material"}

	err := f.Run(t.Context(), streams, material.NewCache())
	require.ErrorIs(t, err, material.ErrUnresolvedBase)

	main = writeFile(t, dir, "main.material",
		"import * from \"gazebo.material\"\nmaterial Custom\n{\n}\n")

	streams, out, _ := testStreams("")
	f = &Find{Input: Input{File: main, Include: []string{lib}}, Query: "material"}

	require.NoError(t, f.Run(t.Context(), streams, material.NewCache()))
	assert.Equal(t,
		[]string{"material:Custom", "material:Gazebo/Grey", "material:Gazebo/Gray", "material:Gazebo/Red"},
		strings.Fields(out.String()))

	streams, out, _ = testStreams("")
	f.NoImports = true

	require.NoError(t, f.Run(t.Context(), streams, material.NewCache()))
	assert.Equal(t, "material:Custom\n", out.String())

	f.NoImports = false
	f.Include = nil

	err = f.Run(t.Context(), streams, material.NewCache())
	assert.ErrorIs(t, err, material.ErrImportNotFound)
	assert.ErrorIs(t, err, ErrLoadScript)
}

func TestFind_GrammarErrorSnippet(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.material", "material Foo }")
	streams, _, _ := testStreams("")

	f := &Find{Input: Input{File: path}, Query: "material"}

	err := f.Run(t.Context(), streams, material.NewCache())
	require.Error(t, err)
	assert.ErrorIs(t, err, material.ErrGrammar)
	assert.ErrorIs(t, err, ErrLoadScript)
	assert.Equal(t, "  1 | material Foo }\n"+strings.Repeat(" ", 19)+"^\n", Snippet(err))

	streams, _, _ = testStreams("material Foo }")
	f.File = stdinSource

	err = f.Run(t.Context(), streams, material.NewCache())
	require.ErrorIs(t, err, material.ErrGrammar)
	assert.NotEmpty(t, Snippet(err))
}

func TestFind_InvalidQuery(t *testing.T) {
	streams, _, _ := testStreams(greyGray)

	f := &Find{Input: Input{File: stdinSource}, Query: "material[bogus=1]"}
	assert.ErrorIs(t, f.Run(t.Context(), streams, material.NewCache()), material.ErrUnknownPredicate)
}
