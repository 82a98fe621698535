package repl

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/sahilm/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/matscript/log"
	"github.com/ardnew/matscript/material"
)

const gazebo = `
material Gazebo/Grey
{
  technique
  {
    pass main
    {
      ambient .3 .3 .3 1.0
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
      lighting off
    }
  }
}
`

func parseFile(t *testing.T, src string) *material.File {
	t.Helper()

	f, err := material.ParseString(t.Context(), src)
	require.NoError(t, err)

	return f
}

var sgrRe = regexp.MustCompile("\x1b\\[[0-9;]*m")

// plain removes terminal styling from s.
func plain(s string) string { return sgrRe.ReplaceAllString(s, "") }

func testModel(t *testing.T, f *material.File, cache *material.Cache) model {
	t.Helper()

	return newModel(t.Context(), f, cache, NewHistory(""), log.Make(io.Discard))
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "mat", 3, "mat", 0, 3},
		{"dot_separated", "material.tech", 13, "tech", 9, 13},
		{"empty_after_dot", "material.", 9, "", 9, 9},
		{"after_bracket", "material[na", 11, "na", 9, 11},
		{"after_equals", "material[name=Gaz", 17, "Gaz", 14, 17},
		{"quoted_value", `material[name="Gazebo/Gr`, 24, "Gazebo/Gr", 15, 24},
		{"after_comma", "pass[name=main,le", 17, "le", 15, 17},
		{"filter", "material | len(ar", 17, "ar", 15, 17},
		{"mid_word", "technique", 4, "technique", 0, 9},
		{"at_start", "pass", 0, "pass", 0, 4},
		{"cursor_past_end", "pass", 10, "pass", 0, 4},
		{"hyphenated", "scene-blend", 11, "scene-blend", 0, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			assert.Equal(t, tt.wantWord, word)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestOpenBracket(t *testing.T) {
	assert.Equal(t, -1, openBracket("material.technique"))
	assert.Equal(t, 8, openBracket("material[name"))
	assert.Equal(t, -1, openBracket("material[name=A]"))
	assert.Equal(t, 21, openBracket("material[name=A].pass[le"))
	assert.Equal(t, 8, openBracket(`material[name="x]y`))
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  completion
	}{
		{"top_level", "", completion{kind: completeKind}},
		{"child", "material.technique.", completion{kind: completeKind, parent: "material.technique"}},
		{
			"child_of_filtered",
			`material[name="Gazebo/Grey"].`,
			completion{kind: completeKind, parent: `material[name="Gazebo/Grey"]`},
		},
		{"predicate", "material.technique.pass[", completion{
			kind: completePredicate, parent: "material.technique", block: "pass",
		}},
		{"second_predicate", "material[level=0,", completion{
			kind: completePredicate, block: "material",
		}},
		{"value", "material[name=", completion{
			kind: completeValue, block: "material", key: "name",
		}},
		{"quoted_value", `material.technique.pass[name="`, completion{
			kind: completeValue, parent: "material.technique", block: "pass", key: "name",
		}},
		{"filter", "material | ", completion{kind: completeFilter}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, start, _ := wordBounds(tt.input, len(tt.input))
			assert.Equal(t, tt.want, analyze(tt.input, start))
		})
	}
}

func TestCandidates(t *testing.T) {
	f := parseFile(t, gazebo)
	ctx := t.Context()

	assert.Equal(t, []string{"material"}, candidates(ctx, f, completion{kind: completeKind}))
	assert.Equal(t, []string{"pass"},
		candidates(ctx, f, completion{kind: completeKind, parent: "material.technique"}))
	assert.Equal(t, []string{"ambient", "lighting"},
		candidates(ctx, f, completion{kind: completeKind, parent: "material.technique.pass"}))
	assert.Empty(t, candidates(ctx, f, completion{kind: completeKind, parent: "material[bogus"}))

	assert.Equal(t, material.PredicateKeys(),
		candidates(ctx, f, completion{kind: completePredicate, block: "material"}))
	assert.Equal(t, filterVars, candidates(ctx, f, completion{kind: completeFilter}))

	assert.Equal(t,
		[]string{"Gazebo/Grey", "Gazebo/Gray", "Gazebo/Red"},
		candidates(ctx, f, completion{kind: completeValue, block: "material", key: "name"}))
	assert.Equal(t, []string{"main"},
		candidates(ctx, f, completion{
			kind: completeValue, parent: "material.technique", block: "pass", key: "name",
		}))
	assert.Equal(t, []string{"0"},
		candidates(ctx, f, completion{kind: completeValue, block: "material", key: "level"}))
	assert.Equal(t,
		[]string{"material:Gazebo/Grey", "material:Gazebo/Gray", "material:Gazebo/Red"},
		candidates(ctx, f, completion{
			kind: completeValue, parent: "material", block: "technique", key: "parent",
		}))
	assert.Empty(t, candidates(ctx, f, completion{kind: completeValue, block: "material", key: "parent"}))
	assert.Empty(t, candidates(ctx, f, completion{kind: completeValue, block: "material", key: "args"}))
	assert.Equal(t, []string{".3 .3 .3 1.0", "1 0 0"},
		candidates(ctx, f, completion{
			kind: completeValue, parent: "material.technique.pass", block: "ambient", key: "args",
		}))

	assert.Empty(t, candidates(context.Background(), nil, completion{kind: completeKind}))
}

func TestComputeMatches(t *testing.T) {
	m := testModel(t, parseFile(t, gazebo), nil)

	m.input.SetValue("mat")
	m.input.SetCursor(3)

	matches, cands, start, end := m.computeMatches()
	require.Len(t, matches, 1)
	assert.Equal(t, "material", matches[0].Str)
	assert.Equal(t, []string{"material"}, cands)
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, end)

	// An empty word at the start of a query keeps the hint visible.
	m.input.SetValue("")
	matches, _, _, _ = m.computeMatches()
	assert.Empty(t, matches)

	// An empty word elsewhere lists every candidate.
	m.input.SetValue("material.technique.pass.")
	m.input.SetCursor(len(m.input.Value()))
	matches, _, _, _ = m.computeMatches()
	assert.Len(t, matches, 2)

	m = m.switchToMode(modeCtrl)
	m.input.SetValue("rel")
	m.input.SetCursor(3)
	matches, _, _, _ = m.computeMatches()
	require.NotEmpty(t, matches)
	assert.Equal(t, "reload", matches[0].Str)
}

func TestCycle(t *testing.T) {
	m := testModel(t, parseFile(t, gazebo), nil)

	m.input.SetValue("material.technique.pass.")
	m.input.SetCursor(len(m.input.Value()))
	refreshMatches(&m, false)
	require.Len(t, m.matches, 2)

	m = m.cycle(1)
	assert.True(t, m.tabActive)
	assert.Equal(t, "material.technique.pass.ambient", m.input.Value())

	m = m.cycle(1)
	assert.Equal(t, "material.technique.pass.lighting", m.input.Value())

	m = m.cycle(1)
	assert.Equal(t, "material.technique.pass.ambient", m.input.Value())

	// A single candidate completes immediately.
	m.tabActive = false
	m.input.SetValue("material.tech")
	m.input.SetCursor(len(m.input.Value()))
	refreshMatches(&m, false)

	m = m.cycle(1)
	assert.False(t, m.tabActive)
	assert.Equal(t, "material.technique", m.input.Value())
	assert.Empty(t, m.matches)
}

func TestRenderCandidateBar(t *testing.T) {
	assert.Empty(t, renderCandidateBar(nil, 0, false, 80))

	matches := fuzzy.Find("a", []string{"ambient", "args", "lighting"})
	require.Len(t, matches, 2)

	bar := plain(renderCandidateBar(matches, -1, false, 80))
	assert.ElementsMatch(t, []string{"ambient", "args"}, strings.Fields(bar))

	narrow := plain(renderCandidateBar(matches, -1, false, 10))
	assert.Equal(t, []string{matches[0].Str, "..."}, strings.Fields(narrow))
}
