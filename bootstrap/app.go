package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/whisperbridge/component"
	"github.com/kbukum/whisperbridge/logger"
)

// App owns the component registry and the lifecycle hooks of one process.
type App struct {
	Name       string
	Version    string
	Components *component.Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration

	onStart   []Hook
	onReady   []Hook
	onStop    []Hook
	onStopped []Hook
}

// New creates an application with an empty component registry.
func New(name, version string, opts ...Option) *App {
	a := &App{
		Name:            name,
		Version:         version,
		Components:      component.NewRegistry(),
		Logger:          logger.GetGlobalLogger(),
		gracefulTimeout: DefaultGracefulTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterComponent adds c to the registry. Components start in registration
// order and stop in reverse.
func (a *App) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// GracefulTimeout returns the shutdown bound.
func (a *App) GracefulTimeout() time.Duration { return a.gracefulTimeout }

// ReadyCheck reports every component that is not healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts the application, blocks until ctx is done and shuts down.
// Cancel ctx on SIGINT/SIGTERM to trigger a graceful stop.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		if stopErr := a.stop(); stopErr != nil {
			return errors.Join(err, stopErr)
		}
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown")
	<-ctx.Done()
	a.Logger.Info("Shutdown requested")

	return a.stop()
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Logger.Info("Application started", logger.Fields(
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return nil
}

// stop runs the stop hooks, stops the components and runs the stopped hooks,
// all within the graceful timeout. Every step runs even when an earlier one
// fails.
func (a *App) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}
	if err := runHooks(ctx, a.onStopped); err != nil {
		a.Logger.Error("OnStopped hook error", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}
