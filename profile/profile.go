package profile

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Path  string // output directory; empty uses the working directory
	Quiet bool   // suppress the start and stop messages of pkg/profile
}

// Option configures a [Profiler].
type Option func(*Profiler)

// New returns a Profiler configured by opts.
func New(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		opt(&p)
	}

	return p
}

// WithMode sets the profiling mode.
func WithMode(mode string) Option {
	return func(p *Profiler) { p.Mode = mode }
}

// WithPath sets the output directory.
func WithPath(path string) Option {
	return func(p *Profiler) { p.Path = path }
}

// WithQuiet suppresses the messages of the profiler itself.
func WithQuiet(quiet bool) Option {
	return func(p *Profiler) { p.Quiet = quiet }
}

// Enabled reports whether Start would begin a session.
func (p Profiler) Enabled() bool {
	return p.Mode != "" && supported(p.Mode)
}

// Start begins profiling and returns the handle that stops it. When the
// profiler is not [Profiler.Enabled], the returned Stopper does nothing.
func (p Profiler) Start() Stopper {
	if !p.Enabled() {
		return ignore{}
	}

	return start(p)
}

func supported(mode string) bool {
	for _, m := range Modes() {
		if m == mode {
			return true
		}
	}

	return false
}

type ignore struct{}

func (ignore) Stop() {}
