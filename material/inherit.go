package material

import (
	"context"
	"log/slog"
	"strings"
)

// resolve states
const (
	unvisited = iota
	visiting
	resolved
)

// resolver merges inheriting top-level items with their bases.
type resolver struct {
	ctx   context.Context
	opts  options
	index map[string]map[string]*Item // kind -> name -> item
	state map[*Item]int
	chain []string
}

// Resolve performs inheritance over the direct children of root.
//
// Each named top-level item that declares bases is merged, in declaration
// order, with the same-kind top-level item of each base name. Bases are
// resolved before the items that inherit from them. Children already present
// on the inheriting item are kept; children only present on the base are
// attached as deep copies. Bases declared by unnamed or nested blocks are
// logged at warn level and otherwise ignored.
func Resolve(ctx context.Context, root *Item, opts ...Option) error {
	r := &resolver{
		ctx:   ctx,
		opts:  makeOptions(opts...),
		state: make(map[*Item]int),
	}

	if err := r.buildIndex(root); err != nil {
		return err
	}

	r.warnNested(root)

	for _, item := range root.children {
		if len(item.bases) == 0 {
			continue
		}

		if !item.named {
			r.opts.logger.WarnContext(ctx, "unnamed block declares a base",
				slog.String("kind", item.kind),
				slog.String("bases", strings.Join(item.bases, ",")),
				slog.String("pos", item.pos.String()))

			continue
		}

		if err := r.resolve(item); err != nil {
			return err
		}
	}

	return nil
}

// warnNested logs the blocks below the top level that declare bases. Only
// top-level blocks take part in inheritance.
func (r *resolver) warnNested(root *Item) {
	for _, top := range root.children {
		for item := range top.Walk() {
			if item == top || len(item.bases) == 0 {
				continue
			}

			r.opts.logger.WarnContext(r.ctx, "nested block declares a base",
				slog.String("path", item.Path()),
				slog.String("bases", strings.Join(item.bases, ",")),
				slog.String("pos", item.pos.String()))
		}
	}
}

// buildIndex maps every named direct child of root by kind and name.
func (r *resolver) buildIndex(root *Item) error {
	r.index = make(map[string]map[string]*Item)

	for _, item := range root.children {
		if !item.named || item.kind == importKind {
			continue
		}

		byName, ok := r.index[item.kind]
		if !ok {
			byName = make(map[string]*Item)
			r.index[item.kind] = byName
		}

		if _, dup := byName[item.name]; dup {
			return ErrDuplicateBlock.WithPosition(item.pos).
				With(slog.String("id", item.ID()))
		}

		byName[item.name] = item
	}

	return nil
}

// resolve merges item with each of its bases, resolving the bases first.
func (r *resolver) resolve(item *Item) error {
	switch r.state[item] {
	case resolved:
		return nil

	case visiting:
		return ErrInheritanceCycle.WithPosition(item.pos).With(
			slog.String("chain", strings.Join(append(r.chain, item.ID()), " -> ")),
		)
	}

	r.state[item] = visiting
	r.chain = append(r.chain, item.ID())

	defer func() { r.chain = r.chain[:len(r.chain)-1] }()

	for _, name := range item.bases {
		base, ok := r.index[item.kind][name]
		if !ok {
			return ErrUnresolvedBase.WithPosition(item.pos).With(
				slog.String("node", item.name),
				slog.String("kind", item.kind),
				slog.String("base", name),
			)
		}

		if err := r.resolve(base); err != nil {
			return err
		}

		item.inherits = append(item.inherits, base)
		base.inheritedBy = append(base.inheritedBy, item)

		if err := merge(item, base); err != nil {
			return err
		}

		r.opts.logger.TraceContext(r.ctx, "inherited",
			slog.String("item", item.ID()),
			slog.String("base", base.ID()))
	}

	r.state[item] = resolved

	return nil
}

// blockMap returns the direct children of item keyed by block id.
func blockMap(item *Item) (map[string]*Item, error) {
	blocks := make(map[string]*Item, len(item.children))

	for _, c := range item.children {
		id := c.ID()
		if _, dup := blocks[id]; dup {
			return nil, ErrDuplicateBlock.WithPosition(c.pos).With(
				slog.String("id", id),
				slog.String("parent", item.Path()),
			)
		}

		blocks[id] = c
	}

	return blocks, nil
}

// merge fills into with whatever from declares that into does not.
func merge(into, from *Item) error {
	have, err := blockMap(into)
	if err != nil {
		return err
	}

	// Validates the donor side too.
	if _, err := blockMap(from); err != nil {
		return err
	}

	// Snapshot: clones appended below must not be revisited.
	donors := from.Children()

	for _, fc := range donors {
		tc, ok := have[fc.ID()]
		if !ok {
			// Full inheritance.
			if err := into.AddChild(fc.Clone()); err != nil {
				return err
			}

			continue
		}

		// Partial inheritance.
		if err := merge(tc, fc); err != nil {
			return err
		}
	}

	return nil
}
