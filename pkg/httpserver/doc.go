// Package httpserver runs the server side rendered web client.
//
// Server wraps http.Server with graceful shutdown on context cancellation or
// termination signals. The request base context is detached from the run
// context, so in-flight renders finish during shutdown. Configuration comes
// from the environment through Config and NewFromConfig.
//
// LivenessHandler and ReadinessHandler serve probes; readiness runs named
// checks such as Reachable against the API base URL.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
package httpserver
