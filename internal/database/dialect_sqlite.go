package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) DSN(config DialectConfig) string {
	// Pragmas ride on the DSN so every pooled connection gets them:
	// WAL lets companion and pool reads proceed while attempts are
	// being written, foreign keys guard attempt/session references,
	// and busy_timeout waits out a concurrent writer instead of
	// failing the attempt.
	return config.Path + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	// ? is SQLite's native placeholder, nothing to rewrite
	return query
}

func (d *SQLiteDialect) SupportsLastInsertId() bool {
	return true
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	// Progress writes are short and already serialized per item in the
	// service layer, so a small pool is enough.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}
