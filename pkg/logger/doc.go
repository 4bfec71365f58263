// Package logger builds the application's slog.Logger from environment
// configuration: JSON output for production aggregation, text for local
// development. Every component receives its logger by injection.
package logger
