package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/matscript/log"
)

// loadConfig is a [kong.ConfigurationLoader] for YAML files whose keys are
// flag names:
//
//	log-level: debug
//	log-format: json
//
// Mappings nest by flag-name prefix, and underscores may stand for hyphens,
// so the following is equivalent:
//
//	log:
//	  level: debug
//	  format: json
//
// Command-line flags override config file values. A file that does not
// parse is ignored with a warning.
func loadConfig(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("ignoring configuration file", slog.Any("error", err))
		}

		return config{}, nil
	}

	cfg := config{}
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over flag names.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}

// flatten stores the values of doc under their hyphenated key paths.
func (c config) flatten(prefix string, doc map[string]any) {
	for key, val := range doc {
		name := strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		if sub, ok := val.(map[string]any); ok {
			c.flatten(name, sub)

			continue
		}

		if v := configValue(val); v != nil {
			c[name] = v
		}
	}
}

// configValue converts a decoded YAML value to one kong's mappers accept:
// numbers become strings and sequences become comma-separated lists.
func configValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case string, bool:
		return v

	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		parts := make([]string, 0, len(v))

		for _, e := range v {
			if s := configValue(e); s != nil {
				parts = append(parts, fmt.Sprint(s))
			}
		}

		return strings.Join(parts, ",")

	default:
		return fmt.Sprint(v)
	}
}
