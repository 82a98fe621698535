package cmd

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/matscript/cli/cmd/repl"
	"github.com/ardnew/matscript/log"
	"github.com/ardnew/matscript/material"
)

// Repl starts an interactive query session over a material script.
type Repl struct {
	File string `arg:"" help:"Material script to query." type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(
	ctx context.Context,
	ktx *kong.Context,
	streams *Streams,
	cache *material.Cache,
) error {
	f, err := load(ctx, streams, cache, r.File)
	if err != nil {
		return err
	}

	return repl.Run(ctx, f, cache, ktx.Model.Vars()[CacheIdentifier], log.Default())
}
