// Package profile wraps [github.com/pkg/profile] so that the command can
// write pprof profiles of a run.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	matscript --pprof-mode cpu find 'material.technique' -f big.material
//	go tool pprof matscript ~/.cache/matscript/pprof/cpu.pprof
//
// Without the tag, [Modes] is empty and [Profiler.Start] never profiles.
// Both builds share the same API, so callers need no build constraints.
//
// The pprof build also registers the [net/http/pprof] handlers.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
