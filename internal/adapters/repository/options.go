package repository

import "time"

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.metricsInterval = interval
		}
	}
}
