// Package logger provides structured logging on top of zerolog.
//
// Loggers write JSON or console output to stderr by default, are scoped per
// component through a small registry, and pick up trace and span ids from
// an OpenTelemetry span carried in a context.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// When loaded through the config package the same settings can be supplied
// as SEQKIT_LOGGING_LEVEL, SEQKIT_LOGGING_FORMAT and so on.
//
// # Usage
//
//	log := logger.Get("pipeline")
//	log.WithContext(ctx).Debug("enumeration started", logger.Fields(
//	    logger.FieldOperation, "countby",
//	))
package logger
