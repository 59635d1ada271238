// Package logging configures slog for indentstat.
//
// By default diagnostics are plain text on stderr at the configured level.
// With --debug, JSON logs are also written to ~/.indentstat/logs/indentstat.log
// through a size-rotating writer, and `indentstat logs` reads them back.
package logging
