package quote

import "log/slog"

type Option func(o *Orchestrator)

// WithLogger specifies the logger for the orchestrator
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithConfig specifies the market configuration for the orchestrator
func WithConfig(c *Config) Option {
	return func(o *Orchestrator) {
		o.config = c
	}
}
