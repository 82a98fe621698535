package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/matscript/log"
	"github.com/ardnew/matscript/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a configuration file with the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context, ktx *kong.Context, streams *Streams) error {
	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err := os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(Settings(ktx),
		yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	_, err = fmt.Fprintln(streams.Out, confPath)

	return err
}

// Settings returns the current values of the application flags, in
// declaration order, keyed by flag name. Unset strings are omitted, as are
// help and profiling flags.
func Settings(ktx *kong.Context) yaml.MapSlice {
	var settings yaml.MapSlice

	ignore := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := settingValue(ktx.FlagValue(flag)); v != nil {
			settings = append(settings, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return settings
}

// settingValue converts a flag value to one that reads back through the
// configuration loader.
func settingValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case string:
		if v == "" {
			return nil
		}

		return v

	case bool, int, int64, uint, uint64, float64:
		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case fmt.Stringer:
		return v.String()

	default:
		return fmt.Sprint(v)
	}
}
