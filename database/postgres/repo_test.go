package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(subject, file string, at time.Time) assetgate.DownloadEvent {
	return assetgate.DownloadEvent{
		ID:            uuid.New(),
		Subject:       subject,
		AuthMethod:    assetgate.AuthMethodJWT,
		ClientIP:      "198.51.100.7",
		FileName:      file,
		ContentType:   "application/json",
		SizeBytes:     2048,
		CorrelationID: "corr-" + subject,
		OccurredAt:    at,
	}
}

func TestRepo_RecordAndList(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	at := time.Date(2026, 2, 9, 10, 30, 0, 123456000, time.UTC)
	event := newEvent("user-123", "data.json", at)
	require.NoError(t, repo.Record(ctx, event))

	events, err := repo.List(ctx, assetgate.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.True(t, at.Equal(got.OccurredAt))
	got.OccurredAt = event.OccurredAt
	assert.Equal(t, event, got)
}

func TestRepo_List_OrderAndFilters(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Record(ctx, newEvent("alice", "a.csv", base)))
	require.NoError(t, repo.Record(ctx, newEvent("bob", "a.csv", base.Add(time.Minute))))
	require.NoError(t, repo.Record(ctx, newEvent("alice", "b.csv", base.Add(2*time.Minute))))

	all, err := repo.List(ctx, assetgate.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b.csv", all[0].FileName)
	assert.Equal(t, "bob", all[1].Subject)

	alice, err := repo.List(ctx, assetgate.AuditQuery{Subject: "alice"})
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	both, err := repo.List(ctx, assetgate.AuditQuery{Subject: "alice", FileName: "a.csv"})
	require.NoError(t, err)
	require.Len(t, both, 1)

	limited, err := repo.List(ctx, assetgate.AuditQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestValidateSchema_AfterMigrate(t *testing.T) {
	_, pool, tables := setupTestRepo(t)

	assert.NoError(t, postgres.ValidateSchema(context.Background(), pool, tables))
}

func TestValidateSchema_MissingTable(t *testing.T) {
	pool := getSharedTestDatabase(t)

	err := postgres.ValidateSchema(context.Background(), pool, assetgate.Tables{Audit: "missing_" + getRandomString(t)})
	assert.ErrorContains(t, err, "does not exist")
}

func TestMigrate_IncompatibleExistingTable(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	tableName := "legacy_" + getRandomString(t)

	_, err := pool.Exec(ctx, "CREATE TABLE "+tableName+" (id UUID PRIMARY KEY)")
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+tableName)
	})

	err = postgres.Migrate(ctx, pool, assetgate.Tables{Audit: tableName})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.NotContains(t, err.Error(), "create audit index")
}

func TestMigrate_InvalidTableName(t *testing.T) {
	pool := getSharedTestDatabase(t)

	err := postgres.Migrate(context.Background(), pool, assetgate.Tables{Audit: "Bad-Name"})
	assert.Error(t, err)
}
