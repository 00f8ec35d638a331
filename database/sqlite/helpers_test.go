package sqlite_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/database/sqlite"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// openTestDB opens a file backed database that is removed with the test.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err, "failed to open")
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// setupTestRepo creates a migrated repo with a unique table name.
func setupTestRepo(t *testing.T) (*sqlite.Repo, *sql.DB, assetgate.Tables) {
	t.Helper()

	db := openTestDB(t)
	tables := assetgate.Tables{Audit: "audit_" + getRandomString(t)}

	require.NoError(t, sqlite.Migrate(context.Background(), db, tables), "failed to migrate")

	repo, err := sqlite.NewRepo(db, tables)
	require.NoError(t, err)

	return repo, db, tables
}
