package worker

import (
	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to a Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
			w.logger = logger.Get().Named(name)
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}
