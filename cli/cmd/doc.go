// Package cmd implements the matscript subcommands.
//
// Commands receive the standard streams as a [*Streams] and share one
// [material.Cache], both bound by the parser, so that a script named more
// than once on a command line is parsed only once.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
