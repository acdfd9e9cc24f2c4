// Command whisperbridge serves speech transcription over HTTP.
//
//	whisperbridge [serve] [--config path] [--env-file path]
//	whisperbridge --version
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/whisperbridge/bootstrap"
	"github.com/kbukum/whisperbridge/bridge"
	"github.com/kbukum/whisperbridge/component"
	"github.com/kbukum/whisperbridge/config"
	"github.com/kbukum/whisperbridge/engine"
	"github.com/kbukum/whisperbridge/logger"
	"github.com/kbukum/whisperbridge/loop"
	"github.com/kbukum/whisperbridge/observability"
	"github.com/kbukum/whisperbridge/scheduler"
	"github.com/kbukum/whisperbridge/server"
	"github.com/kbukum/whisperbridge/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("whisperbridge", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	configFile := flags.StringP("config", "c", "", "path to config.yml")
	envFile := flags.String("env-file", "", "path to a .env file")
	showVersion := flags.BoolP("version", "v", false, "print the version and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.GetVersionInfo())
		return 0
	}
	switch cmd := flags.Arg(0); cmd {
	case "", "serve":
	case "version":
		fmt.Fprintln(stdout, version.GetVersionInfo())
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		flags.Usage()
		return 2
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "whisperbridge: %v\n", err)
		return 1
	}

	if err := serve(ctx, cfg); err != nil {
		logger.Error("whisperbridge stopped with error", logger.Fields(logger.FieldError, err.Error()))
		return 1
	}
	return 0
}

// serve runs the bridge until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	logger.Init(cfg.Logging, cfg.Service.Name)
	logger.Reset()
	log := logger.WithComponent("main")

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}

	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	eng, err := engine.DefaultRegistry().Resolve(cfg.Engine)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	stopTimeout := cfg.Scheduler.DrainTimeout + 5*time.Second
	app := bootstrap.New(cfg.Service.Name, version.GetVersionInfo().Short(),
		bootstrap.WithLogger(log),
		bootstrap.WithComponentStopTimeout(stopTimeout),
		bootstrap.WithGracefulTimeout(3*stopTimeout),
	)

	events := loop.New()
	sched := scheduler.New(cfg.Scheduler, events, scheduler.WithMetrics(metrics))
	b := bridge.New(eng, sched, cfg.Engine, bridge.WithMetrics(metrics))
	workers := bridge.NewWorkers()

	srv := server.New(cfg.Server, logger.GetGlobalLogger())
	srv.Mount(server.NewAPI(b, workers, cfg.Server.RequestDeadline()))
	srv.RegisterDefaultEndpoints(cfg.Service.Name, eng.Name(), app.Components.HealthAll)

	for _, c := range []component.Component{events, sched, srv} {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}

	app.OnReady(func(context.Context) error {
		log.Info("whisperbridge ready", logger.Fields(
			"addr", srv.Addr(),
			"environment", cfg.Service.Environment,
			logger.FieldBackend, eng.Name(),
		))
		return nil
	})
	app.OnStopped(
		func(context.Context) error {
			workers.DisposeAll()
			return nil
		},
		bootstrap.Hook(shutdownTelemetry),
	)
	return app.Run(ctx)
}
