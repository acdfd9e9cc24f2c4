// Package logger provides structured logging for whisperbridge using zerolog.
//
// Every package logs through a component-scoped *Logger obtained from Get,
// so job, handle and worker lines share one format and level.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("scheduler")
//	log.Info("job completed", logger.Fields(logger.FieldJobID, id))
package logger
