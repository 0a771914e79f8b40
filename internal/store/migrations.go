package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema contains the DDL for all bizdir tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	// Backend cookies per owner, restored into the HTTP cookie jar on every
	// page load.
	`CREATE TABLE IF NOT EXISTS cookies (
		owner      TEXT NOT NULL,
		name       TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (owner, name)
	)`,

	// One snapshot of the last search per owner.
	`CREATE TABLE IF NOT EXISTS search_snapshots (
		owner      TEXT PRIMARY KEY,
		results    TEXT NOT NULL DEFAULT '[]',
		searched   INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	)`,

	// Browsers known to the web front end.
	`CREATE TABLE IF NOT EXISTS visitors (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		last_seen  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_last_seen ON visitors(last_seen)`,
}

// alterStatements are column additions that need special handling since
// SQLite doesn't support IF NOT EXISTS for ALTER TABLE ADD COLUMN.
var alterStatements = []struct {
	table    string
	column   string
	alterSQL string
	indexSQL string // Optional index to create after column is added
}{
	// The search terms were added after the first release so the form can be
	// pre-filled when results are restored.
	{
		table:    "search_snapshots",
		column:   "location",
		alterSQL: "ALTER TABLE search_snapshots ADD COLUMN location TEXT NOT NULL DEFAULT ''",
	},
	{
		table:    "search_snapshots",
		column:   "type",
		alterSQL: "ALTER TABLE search_snapshots ADD COLUMN type TEXT NOT NULL DEFAULT ''",
	},
}

// migrate executes all schema DDL statements, alter migrations, and post-migration indexes.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, alter := range alterStatements {
		if err := addColumnIfNotExists(ctx, db, alter.table, alter.column, alter.alterSQL); err != nil {
			return err
		}
		if alter.indexSQL != "" {
			if _, err := db.ExecContext(ctx, alter.indexSQL); err != nil {
				return err
			}
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, alterSQL string) error {
	exists, err := columnExists(ctx, db, table, column)
	if err != nil || exists {
		return err
	}
	_, err = db.ExecContext(ctx, alterSQL)
	return err
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue *string
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}
