package persistence

import (
	_ "modernc.org/sqlite"
)

// NewSQLiteStore creates a storage manager backed by a SQLite file, or an
// in-memory database when path is ":memory:".
func NewSQLiteStore(path string) (*SQLStore, error) {
	// A single connection keeps ":memory:" databases shared and serialises writers.
	return openSQLStore("sqlite", path, dialectSQLite, 1)
}
