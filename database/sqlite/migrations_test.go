package sqlite_test

import (
	"context"
	"testing"

	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesValidSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tables := assetgate.Tables{Audit: "audit_" + getRandomString(t)}

	require.NoError(t, sqlite.Migrate(ctx, db, tables))
	assert.NoError(t, sqlite.ValidateSchema(ctx, db, tables))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tables := assetgate.Tables{Audit: "audit_" + getRandomString(t)}

	require.NoError(t, sqlite.Migrate(ctx, db, tables))
	assert.NoError(t, sqlite.Migrate(ctx, db, tables))
}

func TestMigrate_InvalidTableName(t *testing.T) {
	db := openTestDB(t)

	err := sqlite.Migrate(context.Background(), db, assetgate.Tables{Audit: `x"; DROP TABLE y; --`})
	assert.Error(t, err)
}

func TestValidateSchema_MissingTable(t *testing.T) {
	db := openTestDB(t)

	err := sqlite.ValidateSchema(context.Background(), db, assetgate.Tables{Audit: "does_not_exist"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateSchema_WrongColumns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE legacy_audit (id TEXT NOT NULL PRIMARY KEY, subject INTEGER)`)
	require.NoError(t, err)

	err = sqlite.ValidateSchema(ctx, db, assetgate.Tables{Audit: "legacy_audit"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "subject: expected text, got INTEGER")
}

func TestMigrate_IncompatibleExistingTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE legacy_events (id TEXT NOT NULL PRIMARY KEY)`)
	require.NoError(t, err)

	err = sqlite.Migrate(ctx, db, assetgate.Tables{Audit: "legacy_events"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.NotContains(t, err.Error(), "create audit index")
}

func TestDropTables(t *testing.T) {
	_, db, tables := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, sqlite.DropTables(ctx, db, tables))

	err := sqlite.ValidateSchema(ctx, db, tables)
	assert.ErrorContains(t, err, "does not exist")
}
