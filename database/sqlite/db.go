package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/database/internal/schema"
)

var auditTableSchema = schema.Table{
	"id":             {DataType: "text"},
	"subject":        {DataType: "text"},
	"auth_method":    {DataType: "text"},
	"client_ip":      {DataType: "text"},
	"file_name":      {DataType: "text"},
	"content_type":   {DataType: "text"},
	"size_bytes":     {DataType: "integer"},
	"correlation_id": {DataType: "text"},
	"occurred_at":    {DataType: "text"},
}

// ValidateSchema checks that every configured table exists with the columns
// the repo reads and writes.
func ValidateSchema(ctx context.Context, db *sql.DB, tables assetgate.Tables) error {
	if err := validateTableSchema(ctx, db, tables.Audit, auditTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Audit, err)
	}
	return nil
}

func validateTableSchema(ctx context.Context, db *sql.DB, tableName string, expected schema.Table) error {
	if !assetgate.IsValidTableName(tableName) {
		return fmt.Errorf("validate table schema: invalid table name: %s", tableName)
	}

	exists, err := tableExists(ctx, db, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", tableName)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(tableName)))
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actual := make(schema.Table)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actual[name] = schema.Column{DataType: dataType, IsNullable: notNull == 0 && pk == 0}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	return schema.Compare(tableName, expected, actual)
}

func tableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, tableName).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return true, nil
}
