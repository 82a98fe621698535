package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// ConfigFileName is the base name of the configuration file.
const ConfigFileName = "config.yaml"

// Prefix returns the base name of the running executable, normalized:
// debugger builds ("__debug_bin123") map to [Name] and leading dots are
// removed.
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		return normalizePrefix(id)
	},
)

var (
	debugBinRe  = regexp.MustCompile(`^__debug_bin\d*$`)
	leadingDots = regexp.MustCompile(`^\.+`)
)

func normalizePrefix(id string) string {
	if debugBinRe.MatchString(id) {
		return Name
	}

	if id = leadingDots.ReplaceAllString(id, ""); id == "" {
		return Name
	}

	return id
}

// ConfigDir returns the per-user configuration directory of the command.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return userDir(os.UserConfigDir, ".config")
	},
)

// CacheDir returns the per-user cache directory of the command.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return userDir(os.UserCacheDir, ".cache")
	},
)

// ConfigFile returns the path of the configuration file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// userDir joins [Prefix] to the directory returned by base, falling back to
// fallback under the home directory, then to the working directory.
func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
