package cmd

import (
	"context"

	"github.com/ardnew/matscript/material"
)

// Fmt parses a material script, resolves its inheritance, and prints the
// result in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native material script (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	Tree   Tree   `cmd:""                    help:"Print the outline of the item tree."`
}

// SourceArg is the positional source argument shared by the fmt commands.
type SourceArg struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

func (s *SourceArg) root(
	ctx context.Context,
	streams *Streams,
	cache *material.Cache,
) (*material.Item, error) {
	f, err := load(ctx, streams, cache, s.Source)
	if err != nil {
		return nil, err
	}

	return f.Root(), nil
}

// Native formats input as native material script syntax.
type Native struct {
	Indent int `default:"2" help:"Indent width for formatted output" short:"i"`

	SourceArg
}

// Run executes the native command.
func (n *Native) Run(ctx context.Context, streams *Streams, cache *material.Cache) error {
	root, err := n.root(ctx, streams, cache)
	if err != nil {
		return err
	}

	return root.Format(ctx, streams.Out, n.Indent)
}

// JSON formats input as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output, 0 for compact" short:"i"`

	SourceArg
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context, streams *Streams, cache *material.Cache) error {
	root, err := j.root(ctx, streams, cache)
	if err != nil {
		return err
	}

	return root.FormatJSON(ctx, streams.Out, j.Indent)
}

// YAML formats input as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output, 0 for flow style" short:"i"`

	SourceArg
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context, streams *Streams, cache *material.Cache) error {
	root, err := y.root(ctx, streams, cache)
	if err != nil {
		return err
	}

	if err := root.FormatYAML(ctx, streams.Out, y.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// Tree prints one line per item with its depth and number of children.
type Tree struct {
	SourceArg
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context, streams *Streams, cache *material.Cache) error {
	root, err := t.root(ctx, streams, cache)
	if err != nil {
		return err
	}

	return root.Dump(streams.Out)
}
