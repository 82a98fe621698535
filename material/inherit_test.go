package material

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/matscript/log"
)

// parseTree tokenizes and builds src without resolving inheritance.
func parseTree(t *testing.T, src string) *Item {
	t.Helper()

	tokens, err := Tokenize(src)
	require.NoError(t, err)

	root := NewRoot()
	require.NoError(t, Build(root, tokens))

	return root
}

func TestResolve_EndToEnd(t *testing.T) {
	f, err := ParseString(t.Context(), greyGray)
	require.NoError(t, err)

	items, err := f.Find(t.Context(), "material[name=Gazebo/Gray].technique.pass.ambient")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{".3", ".3", ".3", "1.0"}, items[0].Args())

	gray := f.Root().Children()[1]
	grey := f.Root().Children()[0]

	assert.Equal(t, []*Item{grey}, gray.Inherits())
	assert.Equal(t, []*Item{gray}, grey.InheritedBy())

	// The inherited subtree is a copy.
	greyAmbient, err := f.Find(t.Context(), "material[name=Gazebo/Grey].technique.pass.ambient")
	require.NoError(t, err)
	require.Len(t, greyAmbient, 1)
	assert.NotSame(t, greyAmbient[0], items[0])
}

func TestResolve_NonInheritingUnchanged(t *testing.T) {
	src := `
material A
{
  technique { pass { ambient 1 0 0 } }
}

material B : A
{
}

material C
{
  receive_shadows off
}
`
	before := parseTree(t, src)
	want := before.Children()[2].String()

	require.NoError(t, Resolve(t.Context(), before))

	assert.Equal(t, want, before.Children()[2].String())
	assert.Equal(t, 1, before.Children()[0].NumChildren())
	assert.Equal(t, 1, before.Children()[1].NumChildren())
}

func TestResolve_FullInheritance(t *testing.T) {
	root := parseTree(t, `
material Base
{
  receive_shadows on
  technique shadow { pass { ambient 0 0 0 } }
}

material Child : Base
{
  technique { pass { ambient 1 1 1 } }
}
`)
	require.NoError(t, Resolve(t.Context(), root))

	child := root.Children()[1]
	require.Equal(t, 3, child.NumChildren())

	ids := make([]string, 0, child.NumChildren())
	for c := range child.All() {
		ids = append(ids, c.ID())
	}

	assert.Equal(t, []string{"technique", "receive_shadows", "technique:shadow"}, ids)

	shadow := child.Children()[2]
	baseShadow := root.Children()[0].Children()[1]
	assert.Equal(t, baseShadow.String(), shadow.String())
	assert.Equal(t, 1, shadow.Level())
	assert.Equal(t, 3, shadow.Children()[0].Children()[0].Level())
}

func TestResolve_PartialInheritance(t *testing.T) {
	root := parseTree(t, `
material Base
{
  technique
  {
    pass
    {
      ambient 0 0 0
      diffuse 0.5 0.5 0.5
    }
    pass extra
    {
      lighting off
    }
  }
}

material Child : Base
{
  technique
  {
    pass
    {
      ambient 1 1 1
    }
  }
}
`)
	require.NoError(t, Resolve(t.Context(), root))

	items, err := Find(root, "material[name=Child].technique.pass")
	require.NoError(t, err)
	require.Len(t, items, 2)

	pass := items[0]
	require.Equal(t, 2, pass.NumChildren())

	ambient := pass.Children()[0]
	assert.Equal(t, "ambient", ambient.Kind())
	assert.Equal(t, []string{"1", "1", "1"}, ambient.Args())

	diffuse := pass.Children()[1]
	assert.Equal(t, "diffuse", diffuse.Kind())
	assert.Equal(t, []string{"0.5", "0.5", "0.5"}, diffuse.Args())
	assert.Equal(t, 3, diffuse.Level())

	assert.Equal(t, "pass:extra", items[1].ID())
}

func TestResolve_ChainedBases(t *testing.T) {
	// C is declared before its base B, which itself inherits from A.
	root := parseTree(t, `
material C : B { }
material B : A { lighting on }
material A { depth_write off }
`)
	require.NoError(t, Resolve(t.Context(), root))

	c := root.Children()[0]
	require.Equal(t, 2, c.NumChildren())
	assert.Equal(t, "lighting", c.Children()[0].Kind())
	assert.Equal(t, "depth_write", c.Children()[1].Kind())
}

func TestResolve_MultipleBases(t *testing.T) {
	root := parseTree(t, `
material A { ambient 1 0 0 }
material B { ambient 0 1 0
  diffuse 0 0 1 }
material C : A, B { }
`)
	require.NoError(t, Resolve(t.Context(), root))

	c := root.Children()[2]
	require.Equal(t, 2, c.NumChildren())
	assert.Equal(t, []string{"1", "0", "0"}, c.Children()[0].Args())
	assert.Equal(t, "diffuse", c.Children()[1].Kind())
}

func TestResolve_UnresolvedBase(t *testing.T) {
	root := parseTree(t, "material Foo : Bar\n{\n}\n")

	err := Resolve(t.Context(), root)
	require.ErrorIs(t, err, ErrUnresolvedBase)

	var e *Error
	require.True(t, errors.As(err, &e))

	for key, want := range map[string]string{
		"node": "Foo",
		"kind": "material",
		"base": "Bar",
	} {
		v, ok := e.Attr(key)
		require.True(t, ok, key)
		assert.Equal(t, want, v.String(), key)
	}

	// Bases resolve within the same kind only.
	root = parseTree(t, "technique Bar { }\nmaterial Foo : Bar { }")
	assert.ErrorIs(t, Resolve(t.Context(), root), ErrUnresolvedBase)

	// The Gazebo example with a misspelled base.
	root = parseTree(t, "material Gazebo/Gray : Foo/material/Bar { }")
	err = Resolve(t.Context(), root)
	require.ErrorIs(t, err, ErrUnresolvedBase)
	assert.Contains(t, err.Error(), "Foo/material/Bar")
}

func TestResolve_DuplicateBlock(t *testing.T) {
	root := parseTree(t, "material X { }\nmaterial X { lighting off }\n")

	err := Resolve(t.Context(), root)
	require.ErrorIs(t, err, ErrDuplicateBlock)

	var e *Error
	require.True(t, errors.As(err, &e))

	id, ok := e.Attr("id")
	require.True(t, ok)
	assert.Equal(t, "material:X", id.String())

	pos, ok := e.Position()
	require.True(t, ok)
	assert.Equal(t, 2, pos.Line)

	// Same name, different kinds, is fine.
	root = parseTree(t, "material X { }\ntechnique X { }\n")
	assert.NoError(t, Resolve(t.Context(), root))
}

func TestResolve_DuplicateChildDuringMerge(t *testing.T) {
	root := parseTree(t, `
material A { pass p { } pass p { } }
material B : A { }
`)
	assert.ErrorIs(t, Resolve(t.Context(), root), ErrDuplicateBlock)
}

func TestResolve_Cycle(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "self", src: "material A : A { }"},
		{name: "pair", src: "material A : B { }\nmaterial B : A { }"},
		{name: "triple", src: "material A : B { }\nmaterial B : C { }\nmaterial C : A { }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Resolve(t.Context(), parseTree(t, tt.src))
			require.ErrorIs(t, err, ErrInheritanceCycle)
			assert.Contains(t, err.Error(), "material:A")
		})
	}
}

func TestResolve_UnnamedWithBaseIgnored(t *testing.T) {
	root := parseTree(t, "material A { lighting off }\ntechnique : A { }")

	require.NoError(t, Resolve(t.Context(), root))
	assert.Equal(t, 0, root.Children()[1].NumChildren())
}

func TestResolve_BasesOutsideTopLevelWarn(t *testing.T) {
	root := parseTree(t, "material X { technique { pass p : q { } } }\ntechnique : X { }")

	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithFormat(log.ParseFormat("json")))
	require.NoError(t, Resolve(t.Context(), root, WithLogger(logger)))

	out := buf.String()
	assert.Contains(t, out, "nested block declares a base")
	assert.Contains(t, out, `"path":"material:X.technique.pass:p"`)
	assert.Contains(t, out, "unnamed block declares a base")
	assert.Equal(t, 2, strings.Count(out, "declares a base"))

	pass := root.Children()[0].Children()[0].Children()[0]
	assert.Empty(t, pass.Inherits())
	assert.Equal(t, 0, pass.NumChildren())
}

func TestResolve_ImportsNotIndexed(t *testing.T) {
	root := parseTree(t, "import A from x.material\nimport B from x.material\nmaterial C { }")

	assert.NoError(t, Resolve(t.Context(), root))
}
