package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLBackend stores blobs in a SQL table.
// It works with any database/sql driver (PostgreSQL, MySQL, SQLite).
// Requires a table with schema:
//
//	CREATE TABLE storefront_storage (
//	    item_key VARCHAR(255) PRIMARY KEY,
//	    value BYTEA NOT NULL,
//	    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
//	);
type SQLBackend struct {
	db        *sql.DB
	tableName string
	dialect   SQLDialect
}

// SQLDialect represents the SQL dialect for query generation.
type SQLDialect int

const (
	// DialectPostgreSQL uses PostgreSQL syntax ($1, $2 placeholders).
	DialectPostgreSQL SQLDialect = iota
	// DialectMySQL uses MySQL syntax (? placeholders).
	DialectMySQL
	// DialectSQLite uses SQLite syntax (? placeholders).
	DialectSQLite
)

// ParseDialect maps a driver-style name to a dialect.
func ParseDialect(name string) (SQLDialect, error) {
	switch name {
	case "postgres", "postgresql", "pgx", "":
		return DialectPostgreSQL, nil
	case "mysql":
		return DialectMySQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	}
	return 0, fmt.Errorf("storage: unknown sql dialect %q", name)
}

// SQLOption configures a SQLBackend.
type SQLOption func(*SQLBackend)

// WithSQLTableName sets the table name.
// Default: "storefront_storage".
func WithSQLTableName(name string) SQLOption {
	return func(b *SQLBackend) {
		b.tableName = name
	}
}

// WithSQLDialect sets the SQL dialect for query generation.
// Default: DialectPostgreSQL.
func WithSQLDialect(dialect SQLDialect) SQLOption {
	return func(b *SQLBackend) {
		b.dialect = dialect
	}
}

// NewSQLBackend creates a SQL-backed blob store. The caller owns db.
func NewSQLBackend(db *sql.DB, opts ...SQLOption) *SQLBackend {
	b := &SQLBackend{
		db:        db,
		tableName: "storefront_storage",
		dialect:   DialectPostgreSQL,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *SQLBackend) placeholder(n int) string {
	if b.dialect == DialectPostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// GetItem reads the blob stored under key.
func (b *SQLBackend) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE item_key = %s`, b.tableName, b.placeholder(1))

	var data []byte
	err := b.db.QueryRowContext(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("storage: sql get %q: %w", key, err)
	}
	return data, true, nil
}

// SetItem upserts the blob under key.
func (b *SQLBackend) SetItem(ctx context.Context, key string, value []byte) error {
	var query string
	switch b.dialect {
	case DialectPostgreSQL:
		query = fmt.Sprintf(`
			INSERT INTO %s (item_key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (item_key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = NOW()
		`, b.tableName)
	case DialectMySQL:
		query = fmt.Sprintf(`
			INSERT INTO %s (item_key, value, updated_at)
			VALUES (?, ?, NOW())
			ON DUPLICATE KEY UPDATE
				value = VALUES(value),
				updated_at = NOW()
		`, b.tableName)
	case DialectSQLite:
		query = fmt.Sprintf(`
			INSERT OR REPLACE INTO %s (item_key, value, updated_at)
			VALUES (?, ?, datetime('now'))
		`, b.tableName)
	}

	if _, err := b.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("storage: sql set %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes the row for key.
func (b *SQLBackend) RemoveItem(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE item_key = %s`, b.tableName, b.placeholder(1))
	if _, err := b.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("storage: sql remove %q: %w", key, err)
	}
	return nil
}

// CreateTable creates the storage table if it does not exist.
func (b *SQLBackend) CreateTable(ctx context.Context) error {
	var query string
	switch b.dialect {
	case DialectPostgreSQL:
		query = `CREATE TABLE IF NOT EXISTS %s (
			item_key VARCHAR(255) PRIMARY KEY,
			value BYTEA NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`
	case DialectMySQL:
		query = `CREATE TABLE IF NOT EXISTS %s (
			item_key VARCHAR(255) PRIMARY KEY,
			value LONGBLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`
	case DialectSQLite:
		query = `CREATE TABLE IF NOT EXISTS %s (
			item_key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`
	}

	if _, err := b.db.ExecContext(ctx, fmt.Sprintf(query, b.tableName)); err != nil {
		return fmt.Errorf("storage: sql create table %s: %w", b.tableName, err)
	}
	return nil
}
