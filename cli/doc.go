// Package cli contains the command line interface for matscript.
//
// # Usage
//
//	matscript find 'material[name="Gazebo/Grey"].technique.pass.ambient' -f gazebo.material
//	matscript color Gazebo/Grey -f gazebo.material
//	matscript fmt json gazebo.material
//	matscript repl gazebo.material
//
// Scripts are parsed once per run through a shared [material.Cache], and
// the scripts named by import statements are loaded from the directory of
// the importing script and from each -I directory.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory ($XDG_CONFIG_HOME/matscript on Linux). Keys are flag names:
//
//	log-level: info
//	log-format: json
//
// Running "matscript init" writes the current values of all global flags to
// that file. Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output on terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o matscript .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/matscript/pprof)
package cli
