package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of the pretty text handler.
type palette struct {
	key, str, num, time, source lipgloss.Style
	levels                      map[slog.Level]lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)

	return palette{
		key:    r.NewStyle().Foreground(lipgloss.Color("8")),
		str:    r.NewStyle().Foreground(lipgloss.Color("6")),
		num:    r.NewStyle().Foreground(lipgloss.Color("3")),
		time:   r.NewStyle().Faint(true),
		source: r.NewStyle().Foreground(lipgloss.Color("5")),
		levels: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): r.NewStyle().Foreground(lipgloss.Color("4")),
			slog.LevelDebug:        r.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
			slog.LevelInfo:         r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
			slog.LevelWarn:         r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
			slog.LevelError:        r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		},
	}
}

// level returns the style of the closest defined level at or below l.
func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.levels[slog.LevelError]

	case l >= slog.LevelWarn:
		return p.levels[slog.LevelWarn]

	case l >= slog.LevelInfo:
		return p.levels[slog.LevelInfo]

	case l >= slog.LevelDebug:
		return p.levels[slog.LevelDebug]

	default:
		return p.levels[slog.Level(LevelTrace)]
	}
}

// prettyHandler writes one colorized line per record:
//
//	<time> <LEVEL> <source> <message> key=value ...
//
// Strings are not quoted unless they contain spaces.
type prettyHandler struct {
	opts    slog.HandlerOptions
	style   palette
	mu      *sync.Mutex
	w       io.Writer
	prefix  string // group prefix for attribute keys
	preattr []byte // attributes added with WithAttrs, already rendered
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		style: makePalette(w),
		mu:    &sync.Mutex{},
		w:     w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		if a := h.replace(nil, slog.Time(slog.TimeKey, r.Time)); a.Key != "" {
			h.field(&buf, h.style.time.Render(a.Value.String()))
		}
	}

	level := h.replace(nil, slog.Any(slog.LevelKey, r.Level))
	h.field(&buf, h.style.level(r.Level).Render(fmt.Sprintf("%-5s", level.Value.String())))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			h.field(&buf, h.style.source.Render(
				filepath.Base(src.File)+":"+strconv.Itoa(src.Line)))
		}
	}

	h.field(&buf, r.Message)

	buf.Write(h.preattr)

	r.Attrs(func(a slog.Attr) bool {
		h.attr(&buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h

	var buf bytes.Buffer
	for _, a := range attrs {
		h.attr(&buf, h.prefix, a)
	}

	c.preattr = append(slices.Clip(h.preattr), buf.Bytes()...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) replace(groups []string, a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(groups, a)
}

func (h *prettyHandler) field(buf *bytes.Buffer, s string) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(s)
}

// attr renders a as key=value, flattening groups into dotted keys.
func (h *prettyHandler) attr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return
		}

		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range group {
			h.attr(buf, prefix, ga)
		}

		return
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.style.key.Render(prefix + a.Key + "="))
	buf.WriteString(h.value(a.Value))
}

func (h *prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return h.style.num.Render(v.String())

	case slog.KindBool:
		return h.style.num.Render(strconv.FormatBool(v.Bool()))

	case slog.KindTime:
		return h.style.time.Render(v.Time().Format("15:04:05.000"))

	default:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}

		return h.style.str.Render(s)
	}
}
