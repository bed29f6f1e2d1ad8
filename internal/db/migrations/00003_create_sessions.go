package migrations

// The sessions table backs the UI flash messages. Its schema differs by
// driver (BLOB/REAL for SQLite, BYTEA/TIMESTAMPTZ for PostgreSQL,
// BLOB/TIMESTAMP(6) for MySQL), matching what each scs store adapter expects.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessions, downCreateSessions)
}

func upCreateSessions(ctx context.Context, tx *sql.Tx) error {
	var ddl string
	switch dialect {
	case "postgres":
		ddl = `CREATE TABLE IF NOT EXISTS sessions (
    token  TEXT PRIMARY KEY,
    data   BYTEA NOT NULL,
    expiry TIMESTAMPTZ NOT NULL
)`
	case "mysql":
		ddl = `CREATE TABLE IF NOT EXISTS sessions (
    token  VARCHAR(43) PRIMARY KEY,
    data   BLOB NOT NULL,
    expiry TIMESTAMP(6) NOT NULL
)`
	default: // sqlite3
		ddl = `CREATE TABLE IF NOT EXISTS sessions (
    token  TEXT PRIMARY KEY,
    data   BLOB NOT NULL,
    expiry REAL NOT NULL
)`
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	// MySQL has no CREATE INDEX IF NOT EXISTS.
	idx := `CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions (expiry)`
	if dialect == "mysql" {
		idx = `CREATE INDEX sessions_expiry_idx ON sessions (expiry)`
	}
	if _, err := tx.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create sessions expiry index: %w", err)
	}
	return nil
}

func downCreateSessions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS sessions`)
	return err
}
