// Package log provides the structured logging system used by laneq.
//
// Loggers are constructed once and passed explicitly; components accept a
// Logger via their NewWithLogger constructors and tag entries with a
// component field:
//
//	logger := log.NewLogger(log.WithLevel(log.InfoLevel))
//	logger = logger.With(log.Component("queue"))
//	logger.Info("lane created", log.Int("lane", 3), log.Int("capacity", 64))
//
// ApplyConfig builds a logger from the LANEQ_LOG_LEVEL / LANEQ_LOG_FORMAT
// environment (text or json, one line per entry).
package log
