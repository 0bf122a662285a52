// Package runstore persists external launch invocations in SQLite.
//
// Every process the launchers start is recorded with its full command line,
// PID, timestamps, and exit state, so an operator can reconstruct what a run
// actually did after the fact. The database is transient bookkeeping, not an
// archive; schema changes bump the version in schema.go and users clear the
// database to adopt the new schema.
package runstore
