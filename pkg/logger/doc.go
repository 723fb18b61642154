// Package logger builds configured log/slog loggers with consistent
// attribute naming for the realtime subsystem.
//
// All catch-and-log sites in the module use the typed attribute helpers
// (logger.Error, logger.UserID, logger.Category, ...) so that log
// aggregation can rely on stable keys.
//
// Basic usage:
//
//	log := logger.New(
//	    logger.WithProduction("realtimekit"),
//	    logger.WithAttr(logger.Component("fanout")),
//	)
//	log.Info("engine started")
package logger
