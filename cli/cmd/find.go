package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/matscript/log"
	"github.com/ardnew/matscript/material"
)

// Output formats of matched items.
const (
	outputText   = "text"
	outputNative = "native"
	outputJSON   = "json"
	outputYAML   = "yaml"
)

// Find prints the items matching a query.
type Find struct {
	Input `embed:""`

	Where  string `help:"Keep only matches for which the expr-lang expression is true (variables: kind, name, named, level, args, children)." placeholder:"EXPR" short:"w"`
	Output string `default:"text" enum:"text,native,json,yaml"                                                                                help:"Output format (${enum})." short:"o"`
	Indent int    `default:"2"    help:"Indent width of native, JSON and YAML output."                                                           short:"i"`

	Query string `arg:"" help:"Dot-separated query, e.g. material[name=\"Gazebo/Grey\"].technique.pass."`
}

// Run executes the find command.
func (f *Find) Run(
	ctx context.Context,
	streams *Streams,
	cache *material.Cache,
) error {
	q, err := material.CompileQuery(f.Query)
	if err != nil {
		return err
	}

	var filter *material.Filter

	if f.Where != "" {
		if filter, err = material.CompileFilter(f.Where); err != nil {
			return err
		}
	}

	files, err := f.open(ctx, streams, cache)
	if err != nil {
		return err
	}

	var items []*material.Item

	for _, file := range files {
		found, err := file.FindQuery(ctx, q)
		if err != nil {
			return err
		}

		items = append(items, found...)
	}

	if filter != nil {
		if items, err = filter.Apply(items); err != nil {
			return err
		}
	}

	log.DebugContext(ctx, "find",
		slog.String("query", q.String()),
		slog.String("where", f.Where),
		slog.Int("files", len(files)),
		slog.Int("matches", len(items)))

	return writeItems(ctx, streams.Out, items, f.Output, f.Indent)
}

// writeItems writes items to w in the named output format.
func writeItems(
	ctx context.Context,
	w io.Writer,
	items []*material.Item,
	format string,
	indent int,
) error {
	switch format {
	case outputJSON:
		return material.FormatItemsJSON(ctx, w, items, indent)

	case outputYAML:
		if err := material.FormatItemsYAML(ctx, w, items, indent); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		return nil

	case outputNative:
		for _, it := range items {
			if err := it.Format(ctx, w, indent); err != nil {
				return err
			}
		}

		return nil

	default:
		for _, it := range items {
			if _, err := fmt.Fprintln(w, textLine(it)); err != nil {
				return err
			}
		}

		return nil
	}
}

// textLine renders an item as its path followed by its arguments.
func textLine(it *material.Item) string {
	path := it.Path()
	if path == "" {
		path = it.Kind()
	}

	if it.NumArgs() == 0 {
		return path
	}

	return path + "\t" + strings.Join(it.Args(), " ")
}
