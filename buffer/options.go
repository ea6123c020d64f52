package buffer

import "github.com/myLogic207/boundedbuf/logger"

type options struct {
	name    string
	metrics *Metrics
	logger  logger.Logger
}

type Option func(*options)

// WithName sets the buffer label used in metrics and logs.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{
		name:   "buffer",
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
