package material

import (
	"github.com/ardnew/matscript/log"
)

// DefaultMaxDepth is the default maximum nesting depth of blocks.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 100

// options holds parse configuration.
type options struct {
	maxDepth int
	logger   log.Logger // zero value discards everything
}

// Option configures parsing behavior.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth of blocks.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// makeOptions applies defaults followed by opts.
func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
