// Package logger provides structured JSON logging built on log/slog.
//
// Request-scoped loggers travel in a context.Context: middleware stores one
// with WithLogger and downstream code retrieves it with FromContextOrDefault,
// so every log line of a request carries the same trace attributes.
package logger
