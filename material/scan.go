package material

import (
	"log/slog"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// Word classifiers. A word is a maximal run of word characters; what the
// run is allowed to be depends on where it appears.
var (
	identRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	blocknameRe = regexp.MustCompile(`^(?:[A-Za-z_][A-Za-z0-9_]*/)*[A-Za-z0-9_]+$`)
	realRe      = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+$`)
	integerRe   = regexp.MustCompile(`^[+-]?[0-9]+$`)
	fileRe      = regexp.MustCompile(
		`^/?(?:[A-Za-z0-9_.]+/)*[A-Za-z0-9_.]*[A-Za-z0-9_]\.(?:frag|glsl|jpeg|jpg|png|vert)$`,
	)
	sourceRe = regexp.MustCompile(`^[A-Za-z0-9_./-]+$`)
)

func isIdent(s string) bool     { return identRe.MatchString(s) }
func isBlockname(s string) bool { return blocknameRe.MatchString(s) }
func isNumber(s string) bool    { return realRe.MatchString(s) || integerRe.MatchString(s) }
func isFileToken(s string) bool { return fileRe.MatchString(s) }

// isValue reports whether s may appear as a property value.
func isValue(s string) bool {
	return isNumber(s) || isFileToken(s) || isIdent(s) || isBlockname(s) ||
		isQuoted(s)
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// Tokenize scans src into a sequence of top-level statement tokens.
//
// The whole input must be matched: any span that is neither an import
// statement nor a block fails with [ErrGrammar].
func Tokenize(src string, opts ...Option) ([]*Token, error) {
	o := makeOptions(opts...)

	s := &scanner{
		input:    []byte(src),
		line:     1,
		col:      1,
		maxDepth: o.maxDepth,
	}

	return s.scanFile()
}

// scanner holds the tokenizer state.
type scanner struct {
	input    []byte
	pos      int
	line     int
	col      int
	depth    int
	maxDepth int
}

// mark is a saved scanner location used for lookahead.
type mark struct{ pos, line, col int }

func (s *scanner) save() mark     { return mark{s.pos, s.line, s.col} }
func (s *scanner) restore(m mark) { s.pos, s.line, s.col = m.pos, m.line, m.col }

// scanFile parses: (importStmt NEWLINE)* block*.
func (s *scanner) scanFile() ([]*Token, error) {
	tokens := make([]*Token, 0)
	seenBlock := false

	for {
		if err := s.skipSpace(true); err != nil {
			return nil, err
		}

		if s.eof() {
			break
		}

		pos := s.position()

		if s.peekWord() == importKind {
			if seenBlock {
				return nil, s.fail(pos, "block", importKind).
					With(slog.String("reason", "import after block"))
			}

			tok, err := s.scanImport()
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, tok)

			continue
		}

		tok, err := s.scanStatement()
		if err != nil {
			return nil, err
		}

		if tok.Kind != TokenBlock {
			return nil, s.fail(s.position(), "{", "end of line").
				With(slog.String("statement", tok.Type))
		}

		seenBlock = true

		tokens = append(tokens, tok)
	}

	return tokens, nil
}

// scanImport parses: "import" ("*" | ident ("," ident)*) "from" source.
func (s *scanner) scanImport() (*Token, error) {
	tok := &Token{Kind: TokenImport, Type: importKind, Pos: s.position()}

	s.scanWord() // "import"

	if err := s.skipSpace(false); err != nil {
		return nil, err
	}

	if s.peek() == '*' {
		s.advance()

		tok.Args = append(tok.Args, "*")
	} else {
		for {
			pos := s.position()

			name := s.scanWord()
			if !isIdent(name) {
				return nil, s.fail(pos, "identifier", name)
			}

			tok.Args = append(tok.Args, name)

			if err := s.skipSpace(false); err != nil {
				return nil, err
			}

			if s.peek() != ',' {
				break
			}

			s.advance()

			if err := s.skipSpace(false); err != nil {
				return nil, err
			}
		}
	}

	if err := s.skipSpace(false); err != nil {
		return nil, err
	}

	pos := s.position()
	if word := s.scanWord(); word != "from" {
		return nil, s.fail(pos, "from", word)
	}

	if err := s.skipSpace(false); err != nil {
		return nil, err
	}

	pos = s.position()

	if s.peek() == '"' {
		quoted, err := s.scanString()
		if err != nil {
			return nil, err
		}

		from, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, s.fail(pos, "string", quoted)
		}

		tok.Name = from
	} else {
		from := s.scanWord()
		if !sourceRe.MatchString(from) {
			return nil, s.fail(pos, "import source", from)
		}

		tok.Name = from
	}

	tok.HasName = true

	if err := s.endLine(); err != nil {
		return nil, err
	}

	return tok, nil
}

// scanStatement parses a block or a property line, starting at its keyword.
func (s *scanner) scanStatement() (*Token, error) {
	pos := s.position()

	kind := s.scanWord()
	if !isIdent(kind) {
		found := kind
		if found == "" {
			found = s.peekString()
		}

		return nil, s.fail(pos, "identifier", found)
	}

	words, positions, err := s.scanWords()
	if err != nil {
		return nil, err
	}

	if s.peek() == '\n' {
		// A header may be separated from its '{' by blank lines.
		m := s.save()

		if err := s.skipSpace(true); err != nil {
			return nil, err
		}

		if c := s.peek(); c != '{' && c != ':' {
			s.restore(m)
		}
	}

	if c := s.peek(); c == '{' || c == ':' {
		return s.scanBlock(pos, kind, words, positions)
	}

	return s.scanProperty(pos, kind, words, positions)
}

// scanWords collects the words following a keyword on the same line.
func (s *scanner) scanWords() ([]string, []Position, error) {
	var (
		words     []string
		positions []Position
	)

	for {
		if err := s.skipSpace(false); err != nil {
			return nil, nil, err
		}

		pos := s.position()
		c := s.peek()

		switch {
		case s.eof(), c == '\n', c == '{', c == '}', c == ':':
			return words, positions, nil

		case c == '"':
			str, err := s.scanString()
			if err != nil {
				return nil, nil, err
			}

			words = append(words, str)
			positions = append(positions, pos)

		case isWordChar(c):
			words = append(words, s.scanWord())
			positions = append(positions, pos)

		default:
			return nil, nil, s.fail(pos, "value", string(c))
		}
	}
}

// scanProperty validates a property line: ident value+.
func (s *scanner) scanProperty(
	pos Position,
	kind string,
	words []string,
	positions []Position,
) (*Token, error) {
	if len(words) == 0 {
		found := "end of line"
		if s.eof() {
			found = "end of input"
		} else if s.peek() == '}' {
			found = "}"
		}

		return nil, s.fail(s.position(), "value", found).
			With(slog.String("statement", kind))
	}

	for i, w := range words {
		if !isValue(w) {
			return nil, s.fail(positions[i], "value", w).
				With(slog.String("statement", kind))
		}
	}

	// Property lines end at a newline, or at the '}' closing a one-line
	// block, or at the end of input.
	if s.peek() == '\n' {
		s.advance()
	}

	return &Token{
		Kind: TokenProperty,
		Type: kind,
		Args: words,
		Pos:  pos,
	}, nil
}

// scanBlock parses the rest of a block after its header words:
// (":" blockname ("," blockname)*)? "{" body "}".
func (s *scanner) scanBlock(
	pos Position,
	kind string,
	words []string,
	positions []Position,
) (*Token, error) {
	tok := &Token{Kind: TokenBlock, Type: kind, Pos: pos}

	for i, w := range words {
		switch {
		case i == 0 && isBlockname(w):
			tok.Name, tok.HasName = w, true

		case i > 0 && (isBlockname(w) || isNumber(w) || isFileToken(w)):
			tok.Args = append(tok.Args, w)

		default:
			return nil, s.fail(positions[i], "block name", w).
				With(slog.String("block", kind))
		}
	}

	if s.peek() == ':' {
		s.advance()

		bases, err := s.scanBases()
		if err != nil {
			return nil, err
		}

		tok.Bases = bases
	}

	if err := s.skipSpace(true); err != nil {
		return nil, err
	}

	if s.peek() != '{' {
		return nil, s.fail(s.position(), "{", s.peekString()).
			With(slog.String("block", kind))
	}

	s.advance()

	s.depth++
	if s.maxDepth > 0 && s.depth > s.maxDepth {
		return nil, ErrMaxDepthExceeded.WithPosition(pos).
			With(slog.Int("max_depth", s.maxDepth))
	}

	for {
		if err := s.skipSpace(true); err != nil {
			return nil, err
		}

		if s.eof() {
			return nil, s.fail(s.position(), "}", "end of input").
				With(slog.String("block", kind))
		}

		if s.peek() == '}' {
			s.advance()

			break
		}

		child, err := s.scanStatement()
		if err != nil {
			return nil, err
		}

		tok.Body = append(tok.Body, child)
	}

	s.depth--

	return tok, nil
}

// scanBases parses blockname ("," blockname)* after the ':' of a header.
func (s *scanner) scanBases() ([]string, error) {
	var bases []string

	for {
		if err := s.skipSpace(true); err != nil {
			return nil, err
		}

		pos := s.position()

		name := s.scanWord()
		if !isBlockname(name) {
			if name == "" {
				name = s.peekString()
			}

			return nil, s.fail(pos, "base name", name)
		}

		bases = append(bases, name)

		if err := s.skipSpace(false); err != nil {
			return nil, err
		}

		if s.peek() != ',' {
			return bases, nil
		}

		s.advance()
	}
}

// endLine requires the end of a line (or of the input) and consumes it.
func (s *scanner) endLine() error {
	if err := s.skipSpace(false); err != nil {
		return err
	}

	if s.eof() {
		return nil
	}

	if s.peek() != '\n' {
		return s.fail(s.position(), "end of line", s.peekString())
	}

	s.advance()

	return nil
}

// fail builds a grammar error at pos.
func (s *scanner) fail(pos Position, expected, found string) *Error {
	return ErrGrammar.WithPosition(pos).With(
		slog.String("expected", expected),
		slog.String("found", found),
	)
}

// Helper methods

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(s.input[s.pos:])

	return r
}

func (s *scanner) peekN(n int) string {
	if s.pos+n > len(s.input) {
		return string(s.input[s.pos:])
	}

	return string(s.input[s.pos : s.pos+n])
}

// peekString describes the upcoming input for error messages.
func (s *scanner) peekString() string {
	if s.eof() {
		return "end of input"
	}

	if s.peek() == '\n' {
		return "end of line"
	}

	m := s.save()
	defer s.restore(m)

	if w := s.scanWord(); w != "" {
		return w
	}

	return string(s.peek())
}

// peekWord returns the next word without consuming it.
func (s *scanner) peekWord() string {
	m := s.save()
	defer s.restore(m)

	return s.scanWord()
}

func (s *scanner) advance() {
	if s.eof() {
		return
	}

	r, size := utf8.DecodeRune(s.input[s.pos:])

	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.input)
}

func (s *scanner) position() Position {
	return Position{
		Offset: s.pos,
		Line:   s.line,
		Column: s.col,
	}
}

// scanWord consumes a run of word characters. A comment opener ends the word.
func (s *scanner) scanWord() string {
	start := s.pos

	for !s.eof() && isWordChar(s.peek()) {
		if s.peek() == '/' {
			if n := s.peekN(2); n == "//" || n == "/*" {
				break
			}
		}

		s.advance()
	}

	return string(s.input[start:s.pos])
}

// scanString consumes a double-quoted string and returns it with quotes.
func (s *scanner) scanString() (string, error) {
	start := s.pos
	pos := s.position()

	s.advance() // skip opening quote

	for !s.eof() {
		switch s.peek() {
		case '\\':
			s.advance() // skip backslash

			if !s.eof() {
				s.advance() // skip escaped char
			}

		case '\n':
			return "", s.fail(pos, "closing quote", "end of line")

		case '"':
			s.advance() // skip closing quote

			return string(s.input[start:s.pos]), nil

		default:
			s.advance()
		}
	}

	return "", s.fail(pos, "closing quote", "end of input")
}

// skipSpace skips blanks and comments, and newlines too if newlines is set.
// Line comments stop before their terminating newline.
func (s *scanner) skipSpace(newlines bool) error {
	for !s.eof() {
		switch c := s.peek(); {
		case c == ' ', c == '\t', c == '\r', c == '\f', c == '\v':
			s.advance()

		case c == '\n' && newlines:
			s.advance()

		case c == '/' && s.peekN(2) == "//":
			for !s.eof() && s.peek() != '\n' {
				s.advance()
			}

		case c == '/' && s.peekN(2) == "/*":
			if err := s.skipBlockComment(); err != nil {
				return err
			}

		default:
			return nil
		}
	}

	return nil
}

func (s *scanner) skipBlockComment() error {
	pos := s.position()

	s.advance() // skip '/'
	s.advance() // skip '*'

	for !s.eof() {
		if s.peekN(2) == "*/" {
			s.advance() // skip '*'
			s.advance() // skip '/'

			return nil
		}

		s.advance()
	}

	return s.fail(pos, "*/", "end of input")
}

// Character classification

func isWordChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true

	case r == '_', r == '.', r == '/', r == '+', r == '-':
		return true

	default:
		return false
	}
}
