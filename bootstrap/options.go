package bootstrap

import (
	"time"

	"github.com/kbukum/whisperbridge/logger"
)

// DefaultGracefulTimeout bounds shutdown when no option overrides it.
const DefaultGracefulTimeout = 15 * time.Second

// Option configures the App during creation.
type Option func(*App)

// WithLogger sets the application logger. It defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Logger = l
		}
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.gracefulTimeout = d
		}
	}
}

// WithComponentStopTimeout sets the per-component stop timeout.
func WithComponentStopTimeout(d time.Duration) Option {
	return func(a *App) { a.Components.SetStopTimeout(d) }
}
