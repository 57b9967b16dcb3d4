// Package logger builds slog loggers for the mailing engine.
//
// New returns a JSON logger writing to stdout. NewWithSentry additionally
// forwards warnings and errors to Sentry when a DSN is configured, falling
// back to stdout-only logging otherwise, so local development needs no
// Sentry account. NewNop discards everything and is the default used by
// components when no logger is supplied.
package logger
