package postgres_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/database/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	testPool     *pgxpool.Pool
	testPoolErr  error
	testPoolOnce sync.Once
)

// getSharedTestDatabase returns a pool on a container shared by every test
// in the package. Tests are skipped when no container provider is available.
func getSharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testPoolErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testPoolErr = fmt.Errorf("connection string: %w", err)
			return
		}

		testPool, testPoolErr = pgxpool.New(ctx, connectionStr)
	})

	require.NoError(t, testPoolErr)
	return testPool
}

// getRandomString generates a random string for unique test identifiers.
func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a migrated repo on a uniquely named table that is
// dropped when the test ends.
func setupTestRepo(t *testing.T) (*postgres.Repo, *pgxpool.Pool, assetgate.Tables) {
	t.Helper()

	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	tables := assetgate.Tables{Audit: "audit_" + getRandomString(t)}

	require.NoError(t, postgres.Migrate(ctx, pool, tables), "failed to migrate")
	t.Cleanup(func() { _ = postgres.DropTables(ctx, pool, tables) })

	repo, err := postgres.NewRepo(pool, tables)
	require.NoError(t, err)

	return repo, pool, tables
}
