package material

import (
	"log/slog"
	"strconv"
	"strings"
)

// accessor resolves a predicate key on an item. The boolean result reports
// whether the attribute is present.
type accessor func(*Item) (string, bool)

// predicateKeys is the closed set of attributes a query predicate may test.
var predicateKeys = map[string]accessor{
	"name": func(it *Item) (string, bool) {
		return it.name, it.named
	},
	"level": func(it *Item) (string, bool) {
		return strconv.Itoa(it.level), true
	},
	// Every attached item has a parent; top-level items compare against the
	// root's empty id.
	"parent": func(it *Item) (string, bool) {
		if it.parent == nil {
			return "", false
		}

		return it.parent.ID(), true
	},
	// An empty argument list is still present.
	"args": func(it *Item) (string, bool) {
		return strings.Join(it.args, " "), true
	},
}

// PredicateKeys returns the attribute names accepted in query predicates.
func PredicateKeys() []string {
	return sortedKeys(predicateKeys)
}

// Predicate is a single key[=value] filter of a query segment.
type Predicate struct {
	Key   string
	Value string
	Test  bool // false for presence-only predicates

	get accessor
}

// Match reports whether it satisfies p.
func (p Predicate) Match(it *Item) bool {
	v, ok := p.get(it)
	if !ok {
		return false
	}

	return !p.Test || v == p.Value
}

// Segment is one step of a query path: a kind and its predicates.
type Segment struct {
	Kind       string
	Predicates []Predicate
}

// Match reports whether it has the segment's kind and satisfies every
// predicate.
func (s Segment) Match(it *Item) bool {
	if it.kind != s.Kind {
		return false
	}

	for _, p := range s.Predicates {
		if !p.Match(it) {
			return false
		}
	}

	return true
}

// Query is a compiled path expression such as
// material[name=Gazebo/Grey].technique.pass.ambient.
type Query struct {
	source   string
	segments []Segment
}

// CompileQuery parses a path expression.
func CompileQuery(query string) (*Query, error) {
	parts, err := SplitQuery(query)
	if err != nil {
		return nil, err
	}

	q := &Query{source: query, segments: make([]Segment, 0, len(parts))}

	for _, part := range parts {
		seg, err := ParseSegment(part)
		if err != nil {
			return nil, err
		}

		q.segments = append(q.segments, seg)
	}

	return q, nil
}

// String returns the source text of q.
func (q *Query) String() string { return q.source }

// Segments returns the parsed segments of q.
func (q *Query) Segments() []Segment { return q.segments }

// Eval evaluates q starting from root. The result preserves document order
// within each step and is empty, not nil, when nothing matches.
func (q *Query) Eval(root *Item) []*Item {
	items := []*Item{root}

	for _, seg := range q.segments {
		next := make([]*Item, 0, len(items))
		for _, it := range items {
			next = append(next, it.findAll(seg)...)
		}

		items = next
	}

	return items
}

// Find evaluates the path expression query starting from root.
func Find(root *Item, query string) ([]*Item, error) {
	q, err := CompileQuery(query)
	if err != nil {
		return nil, err
	}

	return q.Eval(root), nil
}

// FindAll returns the direct children of it matching a single segment, e.g.
// "pass" or "pass[name=main]".
func (it *Item) FindAll(segment string) ([]*Item, error) {
	seg, err := ParseSegment(segment)
	if err != nil {
		return nil, err
	}

	return it.findAll(seg), nil
}

func (it *Item) findAll(seg Segment) []*Item {
	var out []*Item

	for _, c := range it.children {
		if seg.Match(c) {
			out = append(out, c)
		}
	}

	return out
}

// SplitQuery splits a path expression on '.' characters that are neither
// inside brackets nor inside a double-quoted value. Within quotes a
// backslash escapes the following byte.
func SplitQuery(query string) ([]string, error) {
	var (
		parts  []string
		depth  int
		quoted bool
		start  int
	)

	for i := 0; i < len(query); i++ {
		switch c := query[i]; {
		case c == '\\' && quoted:
			i++

		case c == '.' && depth == 0:
			parts = append(parts, query[start:i])
			start = i + 1

		case c == '"' && !quoted:
			quoted = true
			depth++

		case c == '"' && quoted:
			quoted = false
			depth--

		case c == '[' && !quoted:
			depth++

		case c == ']' && !quoted:
			depth--
			if depth < 0 {
				return nil, ErrInvalidQuery.With(
					slog.String("query", query),
					slog.Int("offset", i),
					slog.String("reason", "unbalanced ']'"),
				)
			}
		}
	}

	if depth != 0 {
		reason := "unclosed '['"
		if quoted {
			reason = "unterminated string"
		}

		return nil, ErrInvalidQuery.With(
			slog.String("query", query),
			slog.String("reason", reason),
		)
	}

	return append(parts, query[start:]), nil
}

// ParseSegment parses kind ("[" predicate ("," predicate)* "]")?.
func ParseSegment(segment string) (Segment, error) {
	invalid := func(reason string) error {
		return ErrInvalidQuery.With(
			slog.String("segment", segment),
			slog.String("reason", reason),
		)
	}

	kind, rest, bracketed := strings.Cut(segment, "[")

	kind = strings.TrimSpace(kind)
	if kind == "" {
		return Segment{}, invalid("empty kind")
	}

	if strings.ContainsAny(kind, "]\"=,") {
		return Segment{}, invalid("malformed kind")
	}

	seg := Segment{Kind: kind}

	if !bracketed {
		return seg, nil
	}

	body, ok := strings.CutSuffix(strings.TrimSpace(rest), "]")
	if !ok {
		return Segment{}, invalid("missing ']'")
	}

	for _, raw := range splitPredicates(body) {
		p, err := parsePredicate(raw)
		if err != nil {
			return Segment{}, err
		}

		seg.Predicates = append(seg.Predicates, p)
	}

	return seg, nil
}

// splitPredicates splits on ',' outside double quotes, skipping escaped
// bytes inside them.
func splitPredicates(body string) []string {
	var (
		out    []string
		quoted bool
		start  int
	)

	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			if quoted {
				i++
			}

		case '"':
			quoted = !quoted

		case ',':
			if !quoted {
				out = append(out, body[start:i])
				start = i + 1
			}
		}
	}

	return append(out, body[start:])
}

func parsePredicate(raw string) (Predicate, error) {
	key, value, test := strings.Cut(raw, "=")

	key = strings.TrimSpace(key)
	if key == "" {
		return Predicate{}, ErrInvalidQuery.With(
			slog.String("predicate", raw),
			slog.String("reason", "empty key"),
		)
	}

	get, ok := predicateKeys[key]
	if !ok {
		return Predicate{}, ErrUnknownPredicate.With(
			slog.String("key", key),
			slog.String("known", strings.Join(PredicateKeys(), ",")),
		)
	}

	p := Predicate{Key: key, Test: test, get: get}

	if test {
		value = strings.TrimSpace(value)
		if isQuoted(value) {
			unq, err := strconv.Unquote(value)
			if err != nil {
				return Predicate{}, ErrInvalidQuery.With(
					slog.String("predicate", raw),
					slog.String("reason", "malformed string"),
				)
			}

			value = unq
		}

		p.Value = value
	}

	return p, nil
}
