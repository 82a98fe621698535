package material

import (
	"context"
	"iter"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// Cache holds parsed files keyed by absolute path. It is safe for concurrent
// use.
type Cache struct {
	mu    sync.Mutex
	opts  []Option
	files map[string]*File
}

// NewCache returns an empty cache whose files are parsed with opts.
func NewCache(opts ...Option) *Cache {
	return &Cache{opts: opts, files: make(map[string]*File)}
}

// Load returns the parsed file at path, parsing it on first use.
func (c *Cache) Load(ctx context.Context, path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("file", path))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.files[abs]; ok {
		return f, nil
	}

	f := Open(abs, c.opts...)
	if err := f.Parse(ctx); err != nil {
		return nil, err
	}

	c.files[abs] = f

	return f, nil
}

// Refresh rereads path and replaces the cached file if its content changed.
// The boolean result reports whether a new tree was parsed.
func (c *Cache) Refresh(ctx context.Context, path string) (*File, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false, ErrReadInput.Wrap(err).With(slog.String("file", path))
	}

	src, err := readFile(abs)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old, ok := c.files[abs]
	if ok && old.digest == hashSource(src) {
		return old, false, nil
	}

	f := Open(abs, c.opts...)
	if err := f.load(ctx, src); err != nil {
		return nil, false, WrapError(err).With(slog.String("file", abs))
	}

	c.files[abs] = f

	return f, true, nil
}

// Imports loads, transitively, the files imported by f. Sources are looked up
// in the directory of f first, then in each of dirs. Every file is returned
// at most once, in the order first reached.
func (c *Cache) Imports(ctx context.Context, f *File, dirs ...string) ([]*File, error) {
	var (
		out     []*File
		visited = map[string]struct{}{}
	)

	if f.path != "" {
		if abs, err := filepath.Abs(f.path); err == nil {
			visited[abs] = struct{}{}
		}
	}

	var visit func(from *File) error

	visit = func(from *File) error {
		search := SearchPath(filepath.Dir(from.path), dirs...)

		for _, imp := range from.imports {
			path, ok := lookup(imp.From, search)
			if !ok {
				return ErrImportNotFound.WithPosition(imp.Pos).With(
					slog.String("source", imp.From),
					slog.String("search", strings.Join(search, string(os.PathListSeparator))),
				)
			}

			if _, seen := visited[path]; seen {
				continue
			}

			visited[path] = struct{}{}

			dep, err := c.Load(ctx, path)
			if err != nil {
				return err
			}

			out = append(out, dep)

			if err := visit(dep); err != nil {
				return err
			}
		}

		return nil
	}

	if err := visit(f); err != nil {
		return nil, err
	}

	return out, nil
}

// SearchPath returns the existing directories among dir followed by dirs,
// without duplicates.
func SearchPath(dir string, dirs ...string) []string {
	sep := string(os.PathListSeparator)

	list := mung.Make(
		mung.WithSubjectItems(strings.Join(dirs, sep)),
		mung.WithDelim(sep),
		mung.WithPrefixItems(dir),
		mung.WithFilter(isDir),
	).String()

	var out []string

	for d := range strings.SplitSeq(list, sep) {
		if d != "" && !slices.Contains(out, d) {
			out = append(out, d)
		}
	}

	return out
}

// lookup returns the absolute path of the first regular file named source
// within search.
func lookup(source string, search []string) (string, bool) {
	if filepath.IsAbs(source) {
		return source, isFile(source)
	}

	for _, dir := range search {
		path := filepath.Join(dir, source)
		if !isFile(path) {
			continue
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		return abs, true
	}

	return "", false
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.files)
}

// Files returns an iterator over the cached files in path order.
func (c *Cache) Files() iter.Seq[*File] {
	c.mu.Lock()
	files := maps.Clone(c.files)
	c.mu.Unlock()

	return func(yield func(*File) bool) {
		for _, path := range slices.Sorted(maps.Keys(files)) {
			if !yield(files[path]) {
				return
			}
		}
	}
}

// Clear drops every cached file.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.files)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
