package persistence

import (
	_ "github.com/lib/pq" // PostgreSQL driver
)

// NewPostgresStore creates a new PostgreSQL storage manager
func NewPostgresStore(connectionString string) (*SQLStore, error) {
	return openSQLStore("postgres", connectionString, dialectPostgres, 0)
}
