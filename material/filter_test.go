package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	f, err := ParseString(t.Context(), `
material A
{
  technique
  {
    pass main { ambient 1 0 0 }
    pass { ambient 0 1 0 0.5 }
  }
}
`)
	require.NoError(t, err)

	ambient, err := f.Find(t.Context(), "material.technique.pass.ambient")
	require.NoError(t, err)
	require.Len(t, ambient, 2)

	tests := []struct {
		expr string
		want int
	}{
		{expr: "len(args) == 4", want: 1},
		{expr: `kind == "ambient" && level == 3`, want: 2},
		{expr: `args[0] == "1"`, want: 1},
		{expr: "named", want: 0},
		{expr: "children == 0", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			flt, err := CompileFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, flt.String())

			got, err := flt.Apply(ambient)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	passes, err := f.Find(t.Context(), "material.technique.pass")
	require.NoError(t, err)

	flt, err := CompileFilter(`named && name == "main"`)
	require.NoError(t, err)

	got, err := flt.Apply(passes)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "main", got[0].Name())
}

func TestCompileFilter_Errors(t *testing.T) {
	for _, src := range []string{
		"level +",         // syntax
		"kind",            // not a bool
		"undefined_x > 1", // unknown variable
	} {
		_, err := CompileFilter(src)
		assert.ErrorIs(t, err, ErrInvalidFilter, src)
	}
}

func TestFilter_RuntimeError(t *testing.T) {
	flt, err := CompileFilter(`args[5] == "x"`)
	require.NoError(t, err)

	_, err = flt.Match(NewItem("ambient"))
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
