// Package history persists check runs in SQLite so earlier results can be
// listed and inspected after the terminal output is gone.
//
// Each run gets a UUID and one row per violation. Writes take an exclusive
// file lock next to the database so concurrent CLI invocations serialize
// instead of racing on SQLITE_BUSY. The schema is versioned in schema.go;
// on a mismatch users delete the database.
package history
