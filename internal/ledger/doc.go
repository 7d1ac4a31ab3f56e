// Package ledger records the outcome of every file the worker finishes
// with, successful or not, in a SQLite database under the log directory.
//
// The ledger is an audit trail, not a work queue. The in-memory ingestion
// queue drives processing; rows here are written once per finished file and
// only read back for status output and the ledger CLI commands. Schema
// changes bump schemaVersion; users clear the database to adopt a new
// schema.
package ledger
