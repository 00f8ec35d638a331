package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(subject, file string, at time.Time) assetgate.DownloadEvent {
	return assetgate.DownloadEvent{
		ID:            uuid.New(),
		Subject:       subject,
		AuthMethod:    assetgate.AuthMethodAPIKey,
		ClientIP:      "192.0.2.10",
		FileName:      file,
		ContentType:   "text/csv",
		SizeBytes:     100,
		CorrelationID: "corr-" + subject,
		OccurredAt:    at,
	}
}

func TestRepo_RecordAndList(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	at := time.Date(2026, 2, 9, 10, 30, 0, 123456789, time.UTC)
	event := newEvent("test-key-1", "report.csv", at)

	require.NoError(t, repo.Record(ctx, event))

	events, err := repo.List(ctx, assetgate.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.Subject, got.Subject)
	assert.Equal(t, event.AuthMethod, got.AuthMethod)
	assert.Equal(t, event.ClientIP, got.ClientIP)
	assert.Equal(t, event.FileName, got.FileName)
	assert.Equal(t, event.ContentType, got.ContentType)
	assert.Equal(t, event.SizeBytes, got.SizeBytes)
	assert.Equal(t, event.CorrelationID, got.CorrelationID)
	assert.True(t, at.Equal(got.OccurredAt))
}

func TestRepo_Record_FillsDefaults(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	event := newEvent("user-1", "a.txt", time.Time{})
	event.ID = uuid.Nil

	before := time.Now().Add(-time.Second)
	require.NoError(t, repo.Record(ctx, event))

	events, err := repo.List(ctx, assetgate.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.True(t, events[0].OccurredAt.After(before))
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
	assert.Equal(t, "b.csv", all[0].FileName, "most recent first")
	assert.Equal(t, "bob", all[1].Subject)
	assert.Equal(t, "a.csv", all[2].FileName)

	alice, err := repo.List(ctx, assetgate.AuditQuery{Subject: "alice"})
	require.NoError(t, err)
	assert.Len(t, alice, 2)

	aCSV, err := repo.List(ctx, assetgate.AuditQuery{FileName: "a.csv"})
	require.NoError(t, err)
	assert.Len(t, aCSV, 2)

	both, err := repo.List(ctx, assetgate.AuditQuery{Subject: "alice", FileName: "a.csv"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.True(t, base.Equal(both[0].OccurredAt))

	limited, err := repo.List(ctx, assetgate.AuditQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "b.csv", limited[0].FileName)

	none, err := repo.List(ctx, assetgate.AuditQuery{Subject: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestNewRepo_InvalidTables(t *testing.T) {
	db := openTestDB(t)

	_, err := sqlite.NewRepo(db, assetgate.Tables{Audit: "bad-name"})
	assert.Error(t, err)

	_, err = sqlite.NewRepo(db, assetgate.Tables{})
	assert.Error(t, err)
}

func TestRepo_Record_ContextCanceled(t *testing.T) {
	repo, _, _ := setupTestRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Record(ctx, newEvent("alice", "a.csv", time.Now()))
	assert.Error(t, err)
}
