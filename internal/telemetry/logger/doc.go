// Package logger provides structured logging for the provisioning services.
//
//   - logger.go: slog-backed Logger, runtime level control, net/http bridge
//   - context.go: request-scoped loggers and request IDs
//
// Operational logs only. Check-in records are written by the checkinlog
// sink, never through this package.
package logger
