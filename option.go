package bufpool

// Options configures pool behavior.
type Options struct {
	logger Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		logger: DiscardLogger{},
	}
}

// Option configures pool options using the functional options pattern.
type Option func(*Options)

// WithLogger routes pool diagnostics (evictions, write-backs, flushes) to the
// given logger. The default discards everything.
//
//goland:noinspection GoUnusedExportedFunction
func WithLogger(l Logger) Option {
	return func(opts *Options) {
		opts.logger = l
	}
}
