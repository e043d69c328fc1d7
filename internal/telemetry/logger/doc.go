// Package logger provides structured logging for servetls.
//
//   - logger.go: slog handler construction, levels, default logger
//   - context.go: request-scoped logger and request ID propagation
//   - redact.go: sensitive attribute masking
//
// Records go to stderr in text (default) or JSON format. stdout is reserved
// for the startup banner.
package logger
