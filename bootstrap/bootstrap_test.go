package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/whisperbridge/component"
	"github.com/kbukum/whisperbridge/logger"
)

// mockComponent implements component.Component for testing.
type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	m.record("start " + m.name)
	return m.startErr
}

func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	m.record("stop " + m.name)
	return m.stopErr
}

func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

func (m *mockComponent) record(event string) {
	if m.events != nil {
		*m.events = append(*m.events, event)
	}
}

func healthy(name string) *mockComponent {
	return &mockComponent{name: name, health: component.Health{Name: name, Status: component.StatusHealthy}}
}

func newTestApp(opts ...Option) *App {
	return New("test-svc", "1.0.0", append([]Option{WithLogger(logger.Nop())}, opts...)...)
}

func cancelled() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestNew(t *testing.T) {
	app := New("test-svc", "1.0.0")
	if app.Name != "test-svc" {
		t.Errorf("expected name 'test-svc', got %q", app.Name)
	}
	if app.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", app.Version)
	}
	if app.Components == nil {
		t.Error("expected non-nil components registry")
	}
	if app.Logger == nil {
		t.Error("expected non-nil logger")
	}
	if app.GracefulTimeout() != DefaultGracefulTimeout {
		t.Errorf("expected default graceful timeout, got %v", app.GracefulTimeout())
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"custom", 30 * time.Second, 30 * time.Second},
		{"zero keeps default", 0, DefaultGracefulTimeout},
		{"negative keeps default", -time.Second, DefaultGracefulTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(WithGracefulTimeout(tt.in))
			if got := app.GracefulTimeout(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestWithLogger_NilKeepsDefault(t *testing.T) {
	app := New("test-svc", "1.0.0", WithLogger(nil))
	if app.Logger == nil {
		t.Error("expected the global logger when nil is passed")
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp()
	if err := app.RegisterComponent(healthy("loop")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := app.RegisterComponent(healthy("loop")); err == nil {
		t.Error("expected error for duplicate component")
	}
}

func TestRun_Order(t *testing.T) {
	var events []string
	app := newTestApp()
	for _, name := range []string{"loop", "scheduler", "http-server"} {
		c := healthy(name)
		c.events = &events
		if err := app.RegisterComponent(c); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	hook := func(event string) Hook {
		return func(context.Context) error {
			events = append(events, event)
			return nil
		}
	}
	app.OnStart(hook("onStart"))
	app.OnReady(hook("onReady"))
	app.OnStop(hook("onStop"))
	app.OnStopped(hook("onStopped"))

	if err := app.Run(cancelled()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{
		"start loop", "start scheduler", "start http-server",
		"onStart", "onReady", "onStop",
		"stop http-server", "stop scheduler", "stop loop",
		"onStopped",
	}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("unexpected order:\n got %v\nwant %v", events, want)
	}
}

func TestRun_StartFailureStillRunsStoppedHooks(t *testing.T) {
	app := newTestApp()
	first := healthy("loop")
	broken := &mockComponent{name: "scheduler", startErr: errors.New("boom")}
	_ = app.RegisterComponent(first)
	_ = app.RegisterComponent(broken)

	var started, stopped bool
	app.OnStart(func(context.Context) error { started = true; return nil })
	app.OnStopped(func(context.Context) error { stopped = true; return nil })

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "initialization failed") {
		t.Fatalf("expected initialization error, got %v", err)
	}
	if started {
		t.Error("onStart should not run when a component fails to start")
	}
	if !stopped {
		t.Error("onStopped should run after a failed startup")
	}
	if !first.stopped {
		t.Error("expected the started component to be stopped")
	}
}

func TestRun_HookErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := func(context.Context) error { return boom }

	tests := []struct {
		name    string
		install func(*App)
		wantMsg string
	}{
		{"onStart", func(a *App) { a.OnStart(failing) }, "onStart hook failed"},
		{"onReady", func(a *App) { a.OnReady(failing) }, "onReady hook failed"},
		{"onStop", func(a *App) { a.OnStop(failing) }, "hook 0 failed"},
		{"onStopped", func(a *App) { a.OnStopped(failing) }, "hook 0 failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			c := healthy("loop")
			_ = app.RegisterComponent(c)
			tt.install(app)

			err := app.Run(cancelled())
			if !errors.Is(err, boom) {
				t.Fatalf("expected wrapped hook error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected %q in %q", tt.wantMsg, err.Error())
			}
			if !c.stopped {
				t.Error("expected component to be stopped")
			}
		})
	}
}

func TestRun_ComponentStopError(t *testing.T) {
	app := newTestApp()
	_ = app.RegisterComponent(&mockComponent{
		name:    "http-server",
		stopErr: errors.New("listener stuck"),
		health:  component.Health{Name: "http-server", Status: component.StatusHealthy},
	})
	var stopped bool
	app.OnStopped(func(context.Context) error { stopped = true; return nil })

	err := app.Run(cancelled())
	if err == nil || !strings.Contains(err.Error(), "listener stuck") {
		t.Fatalf("expected stop error, got %v", err)
	}
	if !stopped {
		t.Error("onStopped should run even when a component fails to stop")
	}
}

func TestRunHooks_StopsAtFirstError(t *testing.T) {
	var calls int
	hooks := []Hook{
		func(context.Context) error { calls++; return nil },
		func(context.Context) error { calls++; return errors.New("second") },
		func(context.Context) error { calls++; return nil },
	}
	err := runHooks(context.Background(), hooks)
	if err == nil || !strings.Contains(err.Error(), "hook 1 failed") {
		t.Fatalf("expected hook 1 error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name       string
		components []*mockComponent
		wantErr    string
	}{
		{"empty", nil, ""},
		{"all healthy", []*mockComponent{healthy("loop"), healthy("scheduler")}, ""},
		{
			"unhealthy",
			[]*mockComponent{
				healthy("loop"),
				{name: "http-server", health: component.Health{Name: "http-server", Status: component.StatusUnhealthy, Message: "not serving"}},
			},
			"http-server=unhealthy(not serving)",
		},
		{
			"degraded",
			[]*mockComponent{
				{name: "scheduler", health: component.Health{Name: "scheduler", Status: component.StatusDegraded}},
			},
			"scheduler=degraded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			for _, c := range tt.components {
				if err := app.RegisterComponent(c); err != nil {
					t.Fatalf("register: %v", err)
				}
			}
			err := app.ReadyCheck(context.Background())
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
