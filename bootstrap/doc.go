// Package bootstrap wraps a single remotekit task with logger setup, optional
// trace export and signal-driven cancellation.
//
//	app, err := bootstrap.NewApp(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.RunTask(ctx, func(ctx context.Context) error { ... })
package bootstrap
