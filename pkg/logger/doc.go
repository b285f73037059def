// Package logger builds the slog loggers of the web client.
//
// New returns a *slog.Logger configured by functional options: environment
// defaults (WithEnvironment), LOG_LEVEL and LOG_FORMAT overrides (WithConfig)
// and context extractors that add request scoped attributes, such as the
// request ID and the environment, to every record.
//
//	log := logger.New(
//		logger.WithEnvironment(env, "paymybuddy-web"),
//		logger.WithConfig(cfg.Log),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			environment.LoggerExtractor(),
//		),
//	)
//
// The attribute helpers (Error, RequestID, Component, Event, Token, ...) keep
// key names consistent. Token masks session tokens; never log a raw token.
package logger
