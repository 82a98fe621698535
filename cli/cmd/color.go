package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/matscript/log"
	"github.com/ardnew/matscript/material"
)

// materialKind is the kind of the top-level blocks looked up by name.
const materialKind = "material"

// Color prints the ambient color of a material as four components.
type Color struct {
	Input `embed:""`

	Suggest int `default:"3" help:"Number of similar material names suggested when the name is unknown."`

	Name string `arg:"" help:"Material name, e.g. Gazebo/Grey."`
}

// Run executes the color command.
func (c *Color) Run(
	ctx context.Context,
	streams *Streams,
	cache *material.Cache,
) error {
	files, err := c.open(ctx, streams, cache)
	if err != nil {
		return err
	}

	var colors []*material.Item

	for _, file := range files {
		found, err := file.Color(ctx, c.Name)
		if err != nil {
			return err
		}

		colors = append(colors, found...)
	}

	log.DebugContext(ctx, "color",
		slog.String("name", c.Name),
		slog.Int("matches", len(colors)))

	if len(colors) == 0 {
		return c.miss(ctx, streams, files)
	}

	for _, it := range colors {
		if _, err := fmt.Fprintln(streams.Out, strings.Join(material.RGBA(it), " ")); err != nil {
			return err
		}
	}

	return nil
}

// miss reports the closest declared material names and returns the error
// for an unknown material.
func (c *Color) miss(
	ctx context.Context,
	streams *Streams,
	files []*material.File,
) error {
	var names []string

	for _, file := range files {
		found, err := file.Names(ctx, materialKind)
		if err != nil {
			return err
		}

		names = append(names, found...)
	}

	similar := suggest(c.Name, names, c.Suggest)
	if len(similar) > 0 {
		fmt.Fprintf(streams.Err, "did you mean: %s\n", strings.Join(similar, ", "))
	}

	return ErrUnknownMaterial.With(
		slog.String("name", c.Name),
		slog.Any("suggestions", similar),
	)
}

// suggest returns up to limit names fuzzy-matching pattern, best first. When
// nothing matches, the pattern is shortened from the end until something
// does, so that a misspelled suffix still finds its siblings.
func suggest(pattern string, names []string, limit int) []string {
	if limit <= 0 || len(names) == 0 {
		return nil
	}

	for p := pattern; p != ""; p = p[:len(p)-1] {
		matches := fuzzy.Find(p, names)
		if len(matches) == 0 {
			continue
		}

		out := make([]string, 0, min(limit, len(matches)))

		for _, m := range matches {
			if len(out) == limit {
				break
			}

			out = append(out, m.Str)
		}

		return out
	}

	return nil
}
