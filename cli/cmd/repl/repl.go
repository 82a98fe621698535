package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/matscript/log"
	"github.com/ardnew/matscript/material"
)

// editDoneMsg is sent when editing produced a valid script.
type editDoneMsg struct{ file *material.File }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	queryPrompt = "➜ "
	ctrlPrompt  = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help          Print this cruft
  list [KIND]   List top-level blocks, optionally of one kind
  tree          Print the outline of the item tree
  color NAME    Print the ambient color of a material
  edit          Edit the script in external $EDITOR
  reload        Re-read the script if it changed on disk
  clear         Clear screen
  quit          Exit REPL

Usage:
  Type a query to print the matching items, e.g.
    material[name="Gazebo/Grey"].technique.pass.ambient
  Append " | EXPR" to keep only the items for which EXPR is true, e.g.
    material.technique.pass.ambient | len(args) < 4
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between query and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeQuery inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	argsStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

func formatCommand(input string) string {
	return promptStyle.Render(queryPrompt) + inputStyle.Render(input)
}

func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	file         *material.File
	cache        *material.Cache
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	queryText    string
	queryCursor  int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL over file. Entered lines are kept in a history file
// under cacheDir; an empty cacheDir keeps no history.
func Run(
	ctx context.Context,
	file *material.File,
	cache *material.Cache,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if file == nil {
		return ErrNoFile
	}

	if err := file.Parse(ctx); err != nil {
		return err
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("file", file.Path()),
		slog.String("cache_dir", cacheDir),
		slog.Int("top_level", file.Root().NumChildren()))

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err))
	}

	m := newModel(ctx, file, cache, history, logger)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	file *material.File,
	cache *material.Cache,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(queryPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		file:       file,
		cache:      cache,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeQuery,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(queryPrompt) - 2

		return m, nil

	case editDoneMsg:
		m.file = msg.file
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("top_level", m.file.Root().NumChildren()))

		return m, tea.Println(resultStyle.Render("✔ script updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		if m.mode == modeQuery {
			b.WriteString(hintStyle.Render("Type a query or press Esc for commands"))
		} else {
			b.WriteString(hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"))
		}

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))

	case m.mode == modeQuery:
		c := analyze(input, m.wordStart)
		if c.kind == completeFilter {
			b.WriteString(filterHint())
		} else {
			b.WriteString(predicateHint(c))
		}
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.switchToMode(1 - m.mode), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows, etc.) edits without
	// auto-confirming a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around. A single
// candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n
	case step > 0:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = n - 1
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly
// one candidate remains and the typed word already equals it.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.queryText, m.queryCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl query", slog.String("input", input))

	echo := tea.Println(formatCommand(input))

	items, err := m.evaluate(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(renderItems(items)))
}

// evaluate runs a query, optionally followed by a filter expression.
func (m model) evaluate(input string) ([]*material.Item, error) {
	query, where, filtered := strings.Cut(input, filterSep)

	items, err := m.file.Find(m.ctxFunc(), strings.TrimSpace(query))
	if err != nil || !filtered {
		return items, err
	}

	filter, err := material.CompileFilter(strings.TrimSpace(where))
	if err != nil {
		return nil, err
	}

	return filter.Apply(items)
}

// renderItems renders one line per item: its path and its arguments.
func renderItems(items []*material.Item) string {
	if len(items) == 0 {
		return hintStyle.Render("no match")
	}

	lines := make([]string, len(items))

	for i, it := range items {
		line := resultStyle.Render(it.Path())
		if it.NumArgs() > 0 {
			line += " " + argsStyle.Render(strings.Join(it.Args(), " "))
		}

		lines[i] = line
	}

	return strings.Join(lines, "\n")
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(formatCtrlCommand(input))

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", cmd),
		slog.Any("args", args))

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.list(args)))

	case "t", "tree":
		var b strings.Builder

		_ = m.file.Root().Dump(&b)

		return m, tea.Sequence(echo, tea.Println(strings.TrimRight(b.String(), "\n")))

	case "color":
		return m, tea.Sequence(echo, tea.Println(m.color(strings.Join(args, " "))))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	case "r", "reload":
		var out string

		m, out = m.reload()

		return m, tea.Sequence(echo, tea.Println(out))

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"))
	}
}

// list renders the top-level blocks, restricted to the given kinds if any.
func (m model) list(kinds []string) string {
	var b strings.Builder

	for _, it := range m.file.Root().Children() {
		if !it.IsBlock() || (len(kinds) > 0 && !slices.Contains(kinds, it.Kind())) {
			continue
		}

		preview := fmt.Sprintf("{ %d items }", it.NumChildren())
		if bases := it.Bases(); len(bases) > 0 {
			preview = ": " + strings.Join(bases, ", ") + " " + preview
		}

		fmt.Fprintf(&b, "  %s %s\n", it.ID(), hintStyle.Render(preview))
	}

	return strings.TrimRight(b.String(), "\n")
}

// color renders the RGBA ambient color of the named material.
func (m model) color(name string) string {
	if name == "" {
		return errorStyle.Render("usage: color NAME")
	}

	items, err := m.file.Color(m.ctxFunc(), name)
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	if len(items) == 0 {
		return hintStyle.Render("no material " + strconv.Quote(name))
	}

	return resultStyle.Render(strings.Join(material.RGBA(items[0]), " "))
}

// reload re-reads the script through the cache.
func (m model) reload() (model, string) {
	if m.file.Path() == "" || m.cache == nil {
		return m, hintStyle.Render("script has no path to reload from")
	}

	f, changed, err := m.cache.Refresh(m.ctxFunc(), m.file.Path())
	if err != nil {
		return m, errorStyle.Render("error: " + err.Error())
	}

	m.file = f

	if !changed {
		return m, hintStyle.Render("unchanged")
	}

	return m, resultStyle.Render("✔ reloaded " + f.Path())
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		source:  m.file.Source(),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.edited == nil {
			return editCancelledMsg{}
		}

		return editDoneMsg{file: cmd.edited}
	})
}

// historyStep moves through history by step (-1 older, +1 newer). Entries
// of the other mode switch the mode unless inMode is set, in which case
// they are skipped. Stepping past the newest entry clears the input.
func (m model) historyStep(step int, inMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if inMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to the given mode, preserving each mode's input.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeQuery {
		m.queryText, m.queryCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeQuery {
		m.input.Prompt = promptStyle.Render(queryPrompt)
		m.input.SetValue(m.queryText)
		m.input.SetCursor(m.queryCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
