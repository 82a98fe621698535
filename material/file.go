package material

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// Import is an import statement: import names from source.
type Import struct {
	Names []string // "*" or the imported identifiers
	From  string   // source file, unquoted
	Pos   Position
}

// File is a material script parsed from a single source. It owns the
// resolved tree and answers queries against it.
//
// A File is not safe for concurrent use while it is being parsed. Once
// parsed, the tree it returns must be treated as read-only.
type File struct {
	path    string
	opts    options
	root    *Item
	imports []Import
	source  string
	digest  uint64
	parsed  bool
}

// Open returns a File for path. Nothing is read until the file is parsed,
// either explicitly or by the first query.
func Open(path string, opts ...Option) *File {
	return &File{path: path, opts: makeOptions(opts...)}
}

// ParseString parses, and resolves inheritance in, an in-memory source.
func ParseString(ctx context.Context, src string, opts ...Option) (*File, error) {
	f := &File{opts: makeOptions(opts...)}

	if err := f.load(ctx, src); err != nil {
		return nil, err
	}

	return f, nil
}

// ParseReader parses, and resolves inheritance in, the content of r.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*File, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}

	return ParseString(ctx, data, opts...)
}

// Parse parses the file's own path. It is a no-op once the path is parsed.
func (f *File) Parse(ctx context.Context) error {
	return f.ParseFile(ctx, f.path)
}

// ParseFile parses path into a fresh tree. Calling it again with the path
// that is already parsed does nothing; a different path replaces the tree.
func (f *File) ParseFile(ctx context.Context, path string) error {
	if f.parsed && path == f.path {
		return nil
	}

	if path == "" {
		return ErrReadInput.With(slog.String("reason", "no source path"))
	}

	if err := ctx.Err(); err != nil {
		return ErrReadInput.Wrap(err).With(slog.String("file", path))
	}

	src, err := readFile(path)
	if err != nil {
		return err
	}

	if err := f.load(ctx, src); err != nil {
		return WrapError(err).With(slog.String("file", path))
	}

	f.path = path

	return nil
}

// load tokenizes, builds, and resolves src, replacing the current tree
// only if every step succeeds.
func (f *File) load(ctx context.Context, src string) error {
	f.opts.logger.TraceContext(ctx, "parse start",
		slog.String("file", f.path),
		slog.Int("source_length", len(src)))

	tokens, err := Tokenize(src, WithMaxDepth(f.opts.maxDepth))
	if err != nil {
		return err
	}

	root := NewRoot()
	if err := Build(root, tokens); err != nil {
		return err
	}

	f.opts.logger.TraceContext(ctx, "tree built",
		slog.Int("top_level", root.NumChildren()))

	if err := Resolve(ctx, root, WithLogger(f.opts.logger)); err != nil {
		return err
	}

	var imports []Import

	for _, tok := range tokens {
		if tok.Kind == TokenImport {
			imports = append(imports, Import{
				Names: slices.Clone(tok.Args),
				From:  tok.Name,
				Pos:   tok.Pos,
			})
		}
	}

	f.root = root
	f.imports = imports
	f.source = src
	f.digest = hashSource(src)
	f.parsed = true

	f.opts.logger.TraceContext(ctx, "parse complete",
		slog.String("digest", strconv.FormatUint(f.digest, 16)),
		slog.Int("import_count", len(imports)))

	return nil
}

// Path returns the source path, or "" for in-memory sources.
func (f *File) Path() string { return f.path }

// Parsed reports whether the file has been parsed.
func (f *File) Parsed() bool { return f.parsed }

// Root returns the synthetic root of the resolved tree, or nil before the
// file is parsed.
func (f *File) Root() *Item { return f.root }

// Imports returns the import statements of the file.
func (f *File) Imports() []Import { return slices.Clone(f.imports) }

// Source returns the text the tree was parsed from.
func (f *File) Source() string { return f.source }

// Digest returns the xxh3 hash of the parsed source.
func (f *File) Digest() uint64 { return f.digest }

// Find parses the file if needed and evaluates query against it.
func (f *File) Find(ctx context.Context, query string) ([]*Item, error) {
	q, err := CompileQuery(query)
	if err != nil {
		return nil, err
	}

	return f.FindQuery(ctx, q)
}

// FindQuery is like [File.Find] for an already compiled query.
func (f *File) FindQuery(ctx context.Context, q *Query) ([]*Item, error) {
	if err := f.Parse(ctx); err != nil {
		return nil, err
	}

	items := q.Eval(f.root)

	f.opts.logger.TraceContext(ctx, "query",
		slog.String("query", q.String()),
		slog.Int("matches", len(items)))

	return items, nil
}

// ColorQuery returns the query [File.Color] evaluates for a material name.
func ColorQuery(name string) string {
	return "material[name=" + strconv.Quote(name) + "].technique.pass.ambient"
}

// Color returns the ambient color properties of the named material. The
// arguments of each returned item are the color components.
func (f *File) Color(ctx context.Context, name string) ([]*Item, error) {
	return f.Find(ctx, ColorQuery(name))
}

// Names returns the names of the top-level items of the given kind, in
// document order.
func (f *File) Names(ctx context.Context, kind string) ([]string, error) {
	if err := f.Parse(ctx); err != nil {
		return nil, err
	}

	var names []string

	for it := range f.root.All() {
		if it.kind == kind && it.named {
			names = append(names, it.name)
		}
	}

	return names, nil
}

// RGBA returns the first four arguments of a color property, filling missing
// components with "1.0".
func RGBA(color *Item) []string {
	rgba := append(color.Args(), "1.0", "1.0", "1.0", "1.0")

	return rgba[:4]
}

// hashSource returns the digest identifying the content src.
func hashSource(src string) uint64 { return xxh3.HashString(src) }

// readFile reads the whole file at path.
func readFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", ErrReadInput.Wrap(err).With(slog.String("file", path))
	}
	defer file.Close()

	data, err := readAll(file)
	if err != nil {
		return "", WrapError(err).With(slog.String("file", path))
	}

	return data, nil
}

// readAll reads r to EOF through an asynchronous read-ahead buffer.
func readAll(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err)
	}

	return string(data), nil
}
