package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// DB wraps the database connection with dialect support. All query
// methods rewrite ? placeholders to the dialect's native syntax, so
// repositories write queries once.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// Open creates and configures a database connection for the given type
// ("sqlite", "postgres" or "mysql").
func Open(databaseType string, config DialectConfig) (*DB, error) {
	var dialect Dialect

	switch strings.ToLower(databaseType) {
	case "postgres", "postgresql":
		dialect = NewPostgresDialect()
	case "mysql":
		dialect = NewMySQLDialect()
	case "sqlite", "sqlite3", "":
		dialect = NewSQLiteDialect()
	default:
		return nil, fmt.Errorf("unsupported database type: %s", databaseType)
	}

	conn, err := sql.Open(dialect.DriverName(), dialect.DSN(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply dialect-specific configuration
	if err := dialect.ConfigureConnection(conn); err != nil {
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	return &DB{conn: conn, dialect: dialect}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// GetDialect returns the database dialect
func (db *DB) GetDialect() Dialect {
	return db.dialect
}

// Exec executes a query that doesn't return rows with automatic placeholder rewriting
func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	return db.conn.Exec(db.dialect.RewriteQuery(query), args...)
}

// Query executes a query with automatic placeholder rewriting
func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(db.dialect.RewriteQuery(query), args...)
}

// QueryRow executes a query that returns a single row with automatic placeholder rewriting
func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(db.dialect.RewriteQuery(query), args...)
}

// ExecReturningID executes an INSERT and returns the new row's ID.
// Queries must not carry a trailing semicolon: on PostgreSQL a
// RETURNING clause is appended instead of calling LastInsertId.
func (db *DB) ExecReturningID(query string, args ...any) (int64, error) {
	rewritten := db.dialect.RewriteQuery(query)

	if db.dialect.SupportsLastInsertId() {
		result, err := db.conn.Exec(rewritten, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	var id int64
	if err := db.conn.QueryRow(rewritten+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
