package material

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// filterEnv is the environment a [Filter] expression is evaluated against.
type filterEnv struct {
	Kind     string   `expr:"kind"`
	Name     string   `expr:"name"`
	Named    bool     `expr:"named"`
	Level    int      `expr:"level"`
	Args     []string `expr:"args"`
	Children int      `expr:"children"`
}

func makeFilterEnv(it *Item) filterEnv {
	return filterEnv{
		Kind:     it.kind,
		Name:     it.name,
		Named:    it.named,
		Level:    it.level,
		Args:     it.Args(),
		Children: len(it.children),
	}
}

// Filter is a compiled boolean expr-lang expression over an item, e.g.
//
//	len(args) == 4 && level > 2
//
// The variables kind, name, named, level, args, and children are available.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles src, which must evaluate to a bool.
func CompileFilter(src string) (*Filter, error) {
	program, err := expr.Compile(src, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrInvalidFilter.Wrap(err).
			With(slog.String("expr", src))
	}

	return &Filter{source: src, program: program}, nil
}

// String returns the source text of f.
func (f *Filter) String() string { return f.source }

// Match reports whether it satisfies f.
func (f *Filter) Match(it *Item) (bool, error) {
	out, err := expr.Run(f.program, makeFilterEnv(it))
	if err != nil {
		return false, ErrInvalidFilter.Wrap(err).
			With(slog.String("expr", f.source), slog.String("item", it.Path()))
	}

	ok, _ := out.(bool)

	return ok, nil
}

// Apply returns the items satisfying f, in order.
func (f *Filter) Apply(items []*Item) ([]*Item, error) {
	out := make([]*Item, 0, len(items))

	for _, it := range items {
		ok, err := f.Match(it)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, it)
		}
	}

	return out, nil
}
