package material

import (
	"strconv"
)

// Position identifies a location in source text.
// Line and Column are 1-based; Offset is the 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether p refers to an actual source location.
func (p Position) IsValid() bool { return p.Line > 0 }

// TokenKind classifies a [Token].
type TokenKind int

const (
	// TokenImport is an import statement.
	TokenImport TokenKind = iota

	// TokenBlock is a braced block with a (possibly empty) body.
	TokenBlock

	// TokenProperty is a brace-less property line.
	TokenProperty
)

// String returns a string representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenImport:
		return "Import"

	case TokenBlock:
		return "Block"

	case TokenProperty:
		return "Property"

	default:
		return "Unknown"
	}
}

// importKind is the item kind given to import statements.
const importKind = "import"

// Token is a single matched statement produced by the tokenizer.
// Blocks carry their nested statements in Body; no tree exists yet.
type Token struct {
	Kind TokenKind
	Type string // statement keyword, e.g. "material", "ambient"

	Name    string // declared identifier (blocks) or source (imports)
	HasName bool

	Args  []string // positional words
	Bases []string // declared inheritance bases, in order
	Body  []*Token // nested statements (blocks only)

	Pos Position
}
