package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_AddChildLevels(t *testing.T) {
	root := NewRoot()
	assert.Equal(t, RootLevel, root.Level())
	assert.True(t, root.IsRoot())

	material := NewBlock("material")
	material.SetName("A")

	technique := NewBlock("technique")
	pass := NewBlock("pass")
	ambient := NewItem("ambient")
	ambient.AddArgument("1", "0", "0")

	// Attach bottom-up so every level is rewritten on the way.
	require.NoError(t, pass.AddChild(ambient))
	require.NoError(t, technique.AddChild(pass))
	require.NoError(t, material.AddChild(technique))
	require.NoError(t, root.AddChild(material))

	assert.Equal(t, 0, material.Level())
	assert.Equal(t, 1, technique.Level())
	assert.Equal(t, 2, pass.Level())
	assert.Equal(t, 3, ambient.Level())

	assert.Equal(t, "material:A.technique.pass.ambient", ambient.Path())
	assert.Same(t, pass, ambient.Parent())
}

func TestItem_AddChildCycle(t *testing.T) {
	a := NewBlock("a")
	b := NewBlock("b")

	require.NoError(t, a.AddChild(b))

	assert.ErrorIs(t, b.AddChild(a), ErrInheritanceCycle)
	assert.ErrorIs(t, a.AddChild(a), ErrInheritanceCycle)

	// Failed attachments leave the tree untouched.
	assert.Equal(t, 1, a.NumChildren())
	assert.Equal(t, 0, b.NumChildren())
	assert.Nil(t, a.Parent())
}

func TestItem_AddChildReparents(t *testing.T) {
	a := NewBlock("a")
	b := NewBlock("b")
	c := NewItem("c")

	require.NoError(t, a.AddChild(c))
	require.NoError(t, b.AddChild(c))

	assert.Equal(t, 0, a.NumChildren())
	assert.Equal(t, 1, b.NumChildren())
	assert.Same(t, b, c.Parent())
}

func TestItem_ID(t *testing.T) {
	pass := NewBlock("pass")
	assert.Equal(t, "pass", pass.ID())
	assert.False(t, pass.HasName())

	pass.SetName("main")
	assert.Equal(t, "pass:main", pass.ID())
	assert.Equal(t, "main", pass.Name())
}

func TestItem_Args(t *testing.T) {
	it := NewItem("ambient")
	it.AddArgument(".3", ".3")
	it.AddArgument(".3")

	assert.Equal(t, 3, it.NumArgs())

	arg, ok := it.Arg(0)
	assert.True(t, ok)
	assert.Equal(t, ".3", arg)

	_, ok = it.Arg(3)
	assert.False(t, ok)

	args := it.Args()
	args[0] = "changed"

	arg, _ = it.Arg(0)
	assert.Equal(t, ".3", arg)
}

func TestItem_Clone(t *testing.T) {
	root := NewRoot()

	material := NewBlock("material")
	material.SetName("A")
	material.AddBase("B")

	technique := NewBlock("technique")
	ambient := NewItem("ambient")
	ambient.AddArgument("1", "1", "1")

	require.NoError(t, technique.AddChild(ambient))
	require.NoError(t, material.AddChild(technique))
	require.NoError(t, root.AddChild(material))

	clone := material.Clone()

	assert.Nil(t, clone.Parent())
	assert.Equal(t, 0, clone.Level())
	assert.Equal(t, material.String(), clone.String())
	assert.Equal(t, []string{"B"}, clone.Bases())
	assert.True(t, clone.IsBlock())

	cloneAmbient := clone.Children()[0].Children()[0]
	assert.NotSame(t, ambient, cloneAmbient)
	assert.Equal(t, 2, cloneAmbient.Level())

	// No aliasing between the copies.
	cloneAmbient.AddArgument("1")
	assert.Equal(t, 3, ambient.NumArgs())
	assert.Equal(t, 4, cloneAmbient.NumArgs())
}

func TestItem_Walk(t *testing.T) {
	f, err := ParseString(t.Context(), greyGray)
	require.NoError(t, err)

	var kinds []string
	for it := range f.Root().Children()[0].Walk() {
		kinds = append(kinds, it.Kind())
	}

	assert.Equal(t,
		[]string{"material", "technique", "pass", "ambient", "diffuse", "specular"},
		kinds)

	// Early exit.
	count := 0
	for range f.Root().Walk() {
		count++
		if count == 2 {
			break
		}
	}

	assert.Equal(t, 2, count)
}

func TestItem_LevelInvariant(t *testing.T) {
	f, err := ParseString(t.Context(), greyGray)
	require.NoError(t, err)

	assert.Equal(t, RootLevel, f.Root().Level())

	for it := range f.Root().Walk() {
		if it.IsRoot() {
			continue
		}

		assert.Equal(t, it.Parent().Level()+1, it.Level(), it.Path())
	}
}
