package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/matscript/material"
)

// Hint line styles.
var (
	hintBlockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	hintCurrentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	hintSepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// predicateHint renders the predicate keys of the segment at c, e.g.
//
//	pass[args=… level=… name=… parent=…]
//
// with the key being typed highlighted. It returns "" outside brackets.
func predicateHint(c completion) string {
	if c.kind != completePredicate && c.kind != completeValue {
		return ""
	}

	var b strings.Builder

	b.WriteString(hintBlockStyle.Render(c.block))
	b.WriteString(hintSepStyle.Render("["))

	for i, key := range material.PredicateKeys() {
		if i > 0 {
			b.WriteString(hintSepStyle.Render(" "))
		}

		style := hintStyle
		if key == c.key {
			style = hintCurrentStyle
		}

		b.WriteString(style.Render(key + "=…"))
	}

	b.WriteString(hintSepStyle.Render("]"))

	return b.String()
}

// filterHint renders the variables available to a filter expression.
func filterHint() string {
	return hintSepStyle.Render("| ") + hintStyle.Render(strings.Join(filterVars, " "))
}
