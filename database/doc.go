// Package database connects the persistent audit backends.
//
// Connect opens the configured backend, creates the audit table if needed,
// checks its columns and returns a ready assetgate.AuditRepo:
//
//	repo, cleanup, err := database.Connect(ctx, database.Config{
//	    Type:   "sqlite",
//	    DSN:    "assetgate.db",
//	    Tables: assetgate.Tables{Audit: "download_events"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
// Supported backends are database/sqlite (modernc.org/sqlite) and
// database/postgres (pgx connection pool).
package database
