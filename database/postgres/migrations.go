package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/assetgate"
)

// Migrate creates the audit table if it does not exist, validates its
// columns and then creates the indexes. A pre-existing table with the wrong
// columns fails validation before any index refers to a missing column.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables assetgate.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := createAuditTable(ctx, pool, tables.Audit); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Audit, err)
	}
	if err := ValidateSchema(ctx, pool, tables); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Audit, err)
	}
	if err := createAuditIndexes(ctx, pool, tables.Audit); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Audit, err)
	}
	return nil
}

// DropTables removes every table Migrate creates.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables assetgate.Tables) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgx.Identifier{tables.Audit}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Audit, err)
	}
	return nil
}

func createAuditTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			subject TEXT NOT NULL,
			auth_method TEXT NOT NULL,
			client_ip TEXT NOT NULL,
			file_name TEXT NOT NULL,
			content_type TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			correlation_id TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, pgx.Identifier{tableName}.Sanitize())

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

func createAuditIndexes(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexOccurredAt := pgx.Identifier{fmt.Sprintf("idx_%s_occurred_at", tableName)}.Sanitize()
	indexSubject := pgx.Identifier{fmt.Sprintf("idx_%s_subject", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s
		ON %s (occurred_at DESC);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (subject, occurred_at DESC);
	`,
		indexOccurredAt, quotedTable,
		indexSubject, quotedTable,
	)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create audit index: %w", err)
	}
	return nil
}
