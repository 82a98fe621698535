package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/matscript/log"
	"github.com/ardnew/matscript/material"
)

// Streams are the standard streams available to commands.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process's standard streams.
func StdStreams() *Streams {
	return &Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Input selects a material script and how its imports are resolved.
type Input struct {
	File      string   `default:"-" help:"Material script to read, or '-' for stdin." placeholder:"FILE" short:"f"`
	Include   []string `help:"Additional directory searched for imported scripts." placeholder:"DIR" short:"I"`
	NoImports bool     `help:"Do not load the scripts named by import statements."`
}

// open loads the selected script followed by every script it imports,
// transitively.
func (in *Input) open(
	ctx context.Context,
	streams *Streams,
	cache *material.Cache,
) ([]*material.File, error) {
	f, err := load(ctx, streams, cache, in.File)
	if err != nil {
		return nil, err
	}

	files := []*material.File{f}

	if in.NoImports || len(f.Imports()) == 0 {
		return files, nil
	}

	deps, err := cache.Imports(ctx, f, in.Include...)
	if err != nil {
		return nil, ErrLoadScript.Wrap(err).
			With(slog.String("file", in.File))
	}

	log.DebugContext(ctx, "imports loaded",
		slog.String("file", in.File),
		slog.Int("count", len(deps)))

	return append(files, deps...), nil
}

// load parses source, reading stdin for "-" and going through cache for
// paths. Errors carry an excerpt of the offending source line.
func load(
	ctx context.Context,
	streams *Streams,
	cache *material.Cache,
	source string,
) (*material.File, error) {
	if source == "" || source == stdinSource {
		// The copy of stdin locates the snippet of a failed parse.
		var seen strings.Builder

		f, err := material.ParseReader(ctx, io.TeeReader(streams.In, &seen),
			material.WithLogger(log.Default()))
		if err != nil {
			return nil, ErrLoadScript.Wrap(err).
				With(slog.String("file", stdinSource)).
				withSource(seen.String())
		}

		return f, nil
	}

	f, err := cache.Load(ctx, source)
	if err != nil {
		e := ErrLoadScript.Wrap(err)

		if data, rerr := os.ReadFile(source); rerr == nil {
			e = e.withSource(string(data))
		}

		return nil, e
	}

	return f, nil
}
