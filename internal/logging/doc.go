// Package logging provides the shared slog construction and attribute
// helpers used across rcrd. Session logs are written to the configured log
// directory so they never contend with the interactive status view for the
// terminal.
package logging
