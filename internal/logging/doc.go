// Package logging configures the application's slog loggers: a pretty
// console handler for interactive use, a JSON handler for files, and attr
// helpers with standardized field names.
package logging
