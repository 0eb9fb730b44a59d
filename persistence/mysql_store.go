package persistence

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// NewMySQLStore creates a storage manager for MySQL/MariaDB.
// dsn has the form user:pass@tcp(host:port)/dbname.
func NewMySQLStore(dsn string) (*SQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	// Updates that rewrite identical values must still count as a match.
	cfg.ClientFoundRows = true
	cfg.ParseTime = true

	return openSQLStore("mysql", cfg.FormatDSN(), dialectMySQL, 0)
}
