package repl

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/matscript/material"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "list", "tree", "color", "edit", "reload", "clear", "quit",
}

// filterVars are the variables of a filter expression.
var filterVars = []string{"kind", "name", "named", "level", "args", "children"}

// filterSep separates a query from its filter expression.
const filterSep = " | "

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. Slashes and hyphens are part of words because material names
// contain them (e.g., Gazebo/Grey).
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'[', ']', '(', ')',
		'=', ',', '"', '|',
		'<', '>', '!', '&':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. Returns an empty word when the cursor sits on a
// boundary (after a dot, an opening bracket, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// completionKind identifies what the word at the cursor names.
type completionKind int

const (
	completeKind      completionKind = iota // kind of a query segment
	completePredicate                       // predicate key inside brackets
	completeValue                           // predicate value inside brackets
	completeFilter                          // variable of a filter expression
)

// completion describes the syntactic position of the word at the cursor.
type completion struct {
	kind   completionKind
	parent string // query selecting the items the segment is relative to
	block  string // kind of the segment whose predicates are completed
	key    string // predicate key whose value is completed
}

// analyze classifies the word starting at wordStart.
func analyze(input string, wordStart int) completion {
	prefix := input[:wordStart]

	if strings.Contains(prefix, filterSep) {
		return completion{kind: completeFilter}
	}

	open := openBracket(prefix)
	if open < 0 {
		return completion{
			kind:   completeKind,
			parent: strings.TrimSuffix(strings.TrimSpace(prefix), "."),
		}
	}

	c := completion{kind: completePredicate}

	if segs, err := material.SplitQuery(prefix[:open]); err == nil && len(segs) > 0 {
		c.block = segs[len(segs)-1]
		c.parent = strings.Join(segs[:len(segs)-1], ".")
	}

	inside := prefix[open+1:]
	current := inside[strings.LastIndex(inside, ",")+1:]
	if key, _, ok := strings.Cut(current, "="); ok {
		c.kind = completeValue
		c.key = strings.TrimSpace(key)
	}

	return c
}

// openBracket returns the index of the '[' left open at the end of s, or -1.
// Brackets inside double quotes are ignored, as are escaped quotes.
func openBracket(s string) int {
	open := -1
	quoted := false

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case '[':
			if !quoted {
				open = i
			}
		case ']':
			if !quoted {
				open = -1
			}
		}
	}

	return open
}

// candidates returns the completions valid at position c of a query against
// file.
func candidates(ctx context.Context, file *material.File, c completion) []string {
	switch c.kind {
	case completeFilter:
		return filterVars

	case completePredicate:
		return material.PredicateKeys()

	case completeValue:
		return predicateValues(ctx, file, c.parent, c.block, c.key)

	default:
		var kinds []string

		for _, it := range children(ctx, file, c.parent) {
			if !slices.Contains(kinds, it.Kind()) {
				kinds = append(kinds, it.Kind())
			}
		}

		return kinds
	}
}

// children returns the children of the items selected by parent, or the
// top-level items for an empty parent. Invalid queries have no children.
func children(ctx context.Context, file *material.File, parent string) []*material.Item {
	if file == nil {
		return nil
	}

	if parent == "" {
		if err := file.Parse(ctx); err != nil || file.Root() == nil {
			return nil
		}

		return file.Root().Children()
	}

	items, err := file.Find(ctx, parent)
	if err != nil {
		return nil
	}

	var out []*material.Item

	for _, it := range items {
		out = append(out, it.Children()...)
	}

	return out
}

// predicateValues returns the distinct values of key among the items of the
// given kind below parent.
func predicateValues(
	ctx context.Context,
	file *material.File,
	parent, kind, key string,
) []string {
	var values []string

	add := func(v string) {
		if !slices.Contains(values, v) {
			values = append(values, v)
		}
	}

	for _, it := range children(ctx, file, parent) {
		if it.Kind() != kind {
			continue
		}

		switch key {
		case "name":
			if it.HasName() {
				add(it.Name())
			}

		case "level":
			add(strconv.Itoa(it.Level()))

		case "parent":
			if p := it.Parent(); p != nil && !p.IsRoot() {
				add(p.ID())
			}

		case "args":
			if it.NumArgs() > 0 {
				add(strings.Join(it.Args(), " "))
			}
		}
	}

	return values
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list,
// and the word boundaries. An empty word lists every candidate, except at
// the start of a query where the hint stays visible instead.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	cands []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		cands = ctrlCommands
	} else {
		c := analyze(input, wordStart)
		cands = candidates(m.ctxFunc(), m.file, c)

		if word == "" {
			if len(cands) == 0 || (c.kind == completeKind && c.parent == "") {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(cands))
			for i, s := range cands {
				matches[i] = fuzzy.Match{Str: s, Index: i}
			}

			return matches, cands, wordStart, wordEnd
		}
	}

	if len(cands) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, cands), cands, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle, highlightStyle := suggestionStyle, matchStyle
	if selected {
		baseStyle, highlightStyle = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
