package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/database/internal/schema"
)

var auditTableSchema = schema.Table{
	"id":             {DataType: "uuid"},
	"subject":        {DataType: "text"},
	"auth_method":    {DataType: "text"},
	"client_ip":      {DataType: "text"},
	"file_name":      {DataType: "text"},
	"content_type":   {DataType: "text"},
	"size_bytes":     {DataType: "bigint"},
	"correlation_id": {DataType: "text"},
	"occurred_at":    {DataType: "timestamp with time zone"},
}

// ValidateSchema checks that every configured table exists in the public
// schema with the columns the repo reads and writes.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables assetgate.Tables) error {
	if err := validateTableSchema(ctx, pool, tables.Audit, auditTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Audit, err)
	}
	return nil
}

func validateTableSchema(ctx context.Context, pool *pgxpool.Pool, tableName string, expected schema.Table) error {
	if !assetgate.IsValidTableName(tableName) {
		return fmt.Errorf("validate table schema: invalid table name: %s", tableName)
	}

	exists, err := tableExists(ctx, pool, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", tableName)
	}

	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer rows.Close()

	actual := make(schema.Table)
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actual[name] = schema.Column{DataType: dataType, IsNullable: nullable == "YES"}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	return schema.Compare(tableName, expected, actual)
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, tableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return exists, nil
}
