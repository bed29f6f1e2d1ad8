package migrations

// Ids must never be reused after a delete, which needs AUTOINCREMENT on
// SQLite (plain INTEGER PRIMARY KEY recycles the highest rowid).

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateRecipes, downCreateRecipes)
}

func upCreateRecipes(ctx context.Context, tx *sql.Tx) error {
	var ddl string
	switch dialect {
	case "postgres":
		ddl = `CREATE TABLE IF NOT EXISTS recipes (
    id           BIGSERIAL PRIMARY KEY,
    name         VARCHAR(100) NOT NULL,
    ingredients  TEXT NOT NULL,
    instructions TEXT NOT NULL,
    prep_time    INTEGER NOT NULL CHECK (prep_time BETWEEN 1 AND 1000)
)`
	case "mysql":
		ddl = `CREATE TABLE IF NOT EXISTS recipes (
    id           BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
    name         VARCHAR(100) NOT NULL,
    ingredients  TEXT NOT NULL,
    instructions TEXT NOT NULL,
    prep_time    INT NOT NULL CHECK (prep_time BETWEEN 1 AND 1000)
) DEFAULT CHARSET=utf8mb4`
	default: // sqlite3
		ddl = `CREATE TABLE IF NOT EXISTS recipes (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT NOT NULL CHECK (length(name) <= 100),
    ingredients  TEXT NOT NULL,
    instructions TEXT NOT NULL,
    prep_time    INTEGER NOT NULL CHECK (prep_time BETWEEN 1 AND 1000)
)`
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create recipes table: %w", err)
	}
	return nil
}

func downCreateRecipes(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS recipes`)
	return err
}
