// Package logging builds the slog loggers used across hopper. It provides a
// console handler for interactive use, a JSON handler for log files, shared
// attribute helpers, and the standardized field keys that keep structured
// output greppable.
package logging
