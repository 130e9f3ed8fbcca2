// Package sqlite provides a SQLite-based implementation of the session store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// A session row carries a generated UUID; visited URLs and page results hang off it.
//
// # Data Location
//
// By default, the database is stored at ~/.sitesearch/data/history.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Saves run in a transaction and
// SQLite in WAL mode serialises writers.
package sqlite
