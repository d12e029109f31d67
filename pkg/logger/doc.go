// Package logger builds the service's *slog.Logger.
//
// New returns a logger configured by Option functions: output format (text
// or json), minimum level, static attributes and ContextExtractor callbacks
// that pull request-scoped values such as the request id or the acting user
// out of context.Context on every record.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.AppEnv, "apimgmt"),
//		logger.WithContextValue("request_id", middleware.RequestIDKey),
//	)
//	log.InfoContext(ctx, "subscription accepted",
//		logger.SubscriptionID(sub.ID),
//		logger.ApplicationID(sub.Application),
//	)
//
// The attribute helpers in attr.go keep key names consistent across the
// lifecycle managers, the REST layer and the storage adapters.
package logger
