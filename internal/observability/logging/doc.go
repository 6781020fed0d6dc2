// Logging is configured once at startup:
//
//	LOG_LEVEL   debug | info | warn | error (default info)
//	LOG_FORMAT  json | text (default json)
//
// Example:
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    log := logging.WithRequestID(ctx, slog.Default())
//	    log.Info("processing article", slog.String("company", name))
//	}
package logging
