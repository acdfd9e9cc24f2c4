// Package bootstrap runs the whisperbridge process lifecycle: start the
// registered components in order, run the ready hooks, wait for the context
// to end, then stop everything within a graceful timeout.
//
//	app := bootstrap.New("whisperbridge", version.GetVersionInfo().Short())
//	app.RegisterComponent(events)
//	app.RegisterComponent(sched)
//	app.RegisterComponent(srv)
//	app.OnStopped(func(context.Context) error { workers.DisposeAll(); return nil })
//	err := app.Run(ctx)
package bootstrap
