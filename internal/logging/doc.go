// Package logging assembles structured slog loggers and formatting helpers
// used across axon commands.
//
// It owns the console/JSON handlers, fans records out to a rotating log file,
// and exposes standardized attribute keys so launch code tags log lines with
// run IDs, worker slots, and child PIDs consistently. A no-op logger is
// provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape and routing as the rest of the
// system.
package logging
