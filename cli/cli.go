package cli

import (
	"context"
	"errors"

	"github.com/alecthomas/kong"

	"github.com/ardnew/matscript/cli/cmd"
	"github.com/ardnew/matscript/log"
	"github.com/ardnew/matscript/material"
	"github.com/ardnew/matscript/pkg"
)

// CLI is the top-level command-line interface for matscript.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Find    cmd.Find    `cmd:"" help:"Print the items matching a query."`
	Color   cmd.Color   `cmd:"" help:"Print the ambient color of a material."`
	Fmt     cmd.Fmt     `cmd:"" help:"Format a resolved material script."`
	Repl    cmd.Repl    `cmd:"" help:"Query a material script interactively."`
	Init    cmd.Init    `cmd:"" help:"Initialize configuration file."`
	Version cmd.Version `cmd:"" help:"Print version information."`
}

// Run executes the matscript CLI with the given context and arguments.
// The exit function is called with the appropriate exit code when kong
// terminates early, e.g. after printing help.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, cmd.StdStreams(), paths{
		configFile: pkg.ConfigFile(),
		configDir:  pkg.ConfigDir(),
		cacheDir:   pkg.CacheDir(),
	}, args...)
}

func run(
	ctx context.Context,
	exit func(code int),
	streams *cmd.Streams,
	dirs paths,
	args ...string,
) error {
	var cli CLI

	if err := dirs.mkdirAllRequired(); err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier: dirs.configFile,
		cmd.CacheIdentifier:  dirs.cacheDir,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	groups := []kong.Group{cli.Log.group()}
	if g := cli.Pprof.group(); g.Key != "" {
		groups = append(groups, g)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before kong reports anything.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.Exit(exit),
		kong.Writers(streams.Out, streams.Err),
		kong.ExplicitGroups(groups),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.BindSingletonProvider(func() *material.Cache {
			return material.NewCache(material.WithLogger(log.Default()))
		}),
		kong.Bind(streams),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(loadConfig, dirs.configFile),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		var perr *kong.ParseError
		if errors.As(err, &perr) && perr.Context != nil {
			_ = perr.Context.PrintUsage(false)
		}

		return err
	}

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
