// Package database provides the SQLite connection for Switchboard's
// optional snapshot history store.
//
// The database is opened with WAL mode and a busy timeout, single-writer
// connection pooling (SQLite's sweet spot), and owner-only file
// permissions. Schema management lives with the code that owns the tables;
// see internal/history.
//
// History is an observation path: the control loop never reads it back,
// and a missing or broken database never stops command processing.
package database
