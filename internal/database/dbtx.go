package database

import "database/sql"

// DBTX defines the database operations needed by repositories.
// *DB satisfies it; tests may substitute their own implementation.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	ExecReturningID(query string, args ...any) (int64, error)
	GetDialect() Dialect
}
