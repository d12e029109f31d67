// Package httpserver runs an http.Handler with graceful shutdown and
// provides liveness and readiness handlers.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server", logger.Error(err))
//	}
//
// Run returns once ctx is cancelled and in-flight requests finished, or the
// shutdown timeout elapsed (ErrShutdown). Listener failures return ErrStart.
package httpserver
