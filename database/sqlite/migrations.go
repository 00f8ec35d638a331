package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/assetgate"
)

// quoteIdentifier quotes a table or index name that has already passed
// assetgate.IsValidTableName.
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

// Migrate creates the audit table if it does not exist, validates its
// columns and then creates the indexes. A pre-existing table with the wrong
// columns fails validation before any index refers to a missing column.
func Migrate(ctx context.Context, db *sql.DB, tables assetgate.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := createAuditTable(ctx, db, tables.Audit); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Audit, err)
	}
	if err := ValidateSchema(ctx, db, tables); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Audit, err)
	}
	if err := createAuditIndexes(ctx, db, tables.Audit); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Audit, err)
	}
	return nil
}

// DropTables removes every table Migrate creates.
func DropTables(ctx context.Context, db *sql.DB, tables assetgate.Tables) error {
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdentifier(tables.Audit)); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Audit, err)
	}
	return nil
}

func createAuditTable(ctx context.Context, db *sql.DB, tableName string) error {
	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT NOT NULL PRIMARY KEY,
			subject TEXT NOT NULL,
			auth_method TEXT NOT NULL,
			client_ip TEXT NOT NULL,
			file_name TEXT NOT NULL,
			content_type TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			correlation_id TEXT NOT NULL,
			occurred_at TEXT NOT NULL
		)
	`, quoteIdentifier(tableName))

	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

func createAuditIndexes(ctx context.Context, db *sql.DB, tableName string) error {
	quotedTable := quoteIdentifier(tableName)

	statements := []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (occurred_at)`,
			quoteIdentifier("idx_"+tableName+"_occurred_at"), quotedTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (subject, occurred_at)`,
			quoteIdentifier("idx_"+tableName+"_subject"), quotedTable),
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create audit index: %w", err)
		}
	}
	return nil
}
