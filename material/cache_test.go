package material

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Load(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.material", "material A { }")

	c := NewCache()

	f1, err := c.Load(t.Context(), path)
	require.NoError(t, err)

	f2, err := c.Load(t.Context(), path)
	require.NoError(t, err)
	assert.Same(t, f1, f2)
	assert.Equal(t, 1, c.Len())

	// Relative and absolute spellings share an entry.
	wd, err := os.Getwd()
	require.NoError(t, err)

	rel, err := filepath.Rel(wd, path)
	require.NoError(t, err)

	f3, err := c.Load(t.Context(), rel)
	require.NoError(t, err)
	assert.Same(t, f1, f3)

	_, err = c.Load(t.Context(), filepath.Join(dir, "missing.material"))
	require.ErrorIs(t, err, ErrReadInput)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_Refresh(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.material", "material A { }")

	c := NewCache()

	f, err := c.Load(t.Context(), path)
	require.NoError(t, err)

	same, changed, err := c.Refresh(t.Context(), path)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, f, same)

	writeFile(t, dir, "a.material", "material A { }\nmaterial B { }")

	fresh, changed, err := c.Refresh(t.Context(), path)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotSame(t, f, fresh)
	assert.Equal(t, 2, fresh.Root().NumChildren())

	again, err := c.Load(t.Context(), path)
	require.NoError(t, err)
	assert.Same(t, fresh, again)

	// A broken edit keeps the previous entry.
	writeFile(t, dir, "a.material", "material A {")

	_, _, err = c.Refresh(t.Context(), path)
	require.ErrorIs(t, err, ErrGrammar)

	again, err = c.Load(t.Context(), path)
	require.NoError(t, err)
	assert.Same(t, fresh, again)
}

func TestCache_Imports(t *testing.T) {
	dir := t.TempDir()
	lib := t.TempDir()

	writeFile(t, dir, "base.material", "import * from \"common.material\"\nmaterial Base { }")
	writeFile(t, lib, "common.material", "material Common { }")
	main := writeFile(t, dir, "main.material",
		"import * from \"base.material\"\nimport Common from common.material\nmaterial Main { }")

	c := NewCache()

	f, err := c.Load(t.Context(), main)
	require.NoError(t, err)

	files, err := c.Imports(t.Context(), f, lib)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "base.material"), files[0].Path())
	assert.Equal(t, filepath.Join(lib, "common.material"), files[1].Path())
	assert.Equal(t, 3, c.Len())

	var paths []string
	for cf := range c.Files() {
		paths = append(paths, cf.Path())
	}

	assert.Len(t, paths, 3)
	assert.IsIncreasing(t, paths)

	_, err = c.Imports(t.Context(), f)
	assert.ErrorIs(t, err, ErrImportNotFound)
}

func TestSearchPath(t *testing.T) {
	dir := t.TempDir()
	lib := t.TempDir()

	got := SearchPath(dir, lib, filepath.Join(lib, "missing"), dir)
	assert.Equal(t, []string{dir, lib}, got)
}
