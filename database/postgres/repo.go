// Package postgres stores download audit events in PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/assetgate"
)

// Repo implements assetgate.AuditRepo.
type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

// NewRepo creates a Repo over an already migrated database.
func NewRepo(pool *pgxpool.Pool, tables assetgate.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: pgx.Identifier{tables.Audit}.Sanitize()}, nil
}

// Ping verifies database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Record inserts event. A zero ID or OccurredAt is filled in.
func (r *Repo) Record(ctx context.Context, event assetgate.DownloadEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, subject, auth_method, client_ip, file_name, content_type, size_bytes, correlation_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tableName)

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Subject,
		string(event.AuthMethod),
		event.ClientIP,
		event.FileName,
		event.ContentType,
		event.SizeBytes,
		event.CorrelationID,
		event.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}

	return nil
}

// List returns matching events, most recent first.
func (r *Repo) List(ctx context.Context, q assetgate.AuditQuery) ([]assetgate.DownloadEvent, error) {
	query := fmt.Sprintf(`
		SELECT id, subject, auth_method, client_ip, file_name, content_type, size_bytes, correlation_id, occurred_at
		FROM %s
		WHERE ($1 = '' OR subject = $1) AND ($2 = '' OR file_name = $2)
		ORDER BY occurred_at DESC, id DESC
		LIMIT $3
	`, r.tableName)

	rows, err := r.pool.Query(ctx, query, q.Subject, q.FileName, q.EffectiveLimit())
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	events := []assetgate.DownloadEvent{}
	for rows.Next() {
		var (
			e      assetgate.DownloadEvent
			method string
		)
		if err := rows.Scan(&e.ID, &e.Subject, &method, &e.ClientIP, &e.FileName, &e.ContentType, &e.SizeBytes, &e.CorrelationID, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		e.AuthMethod = assetgate.AuthMethod(method)
		e.OccurredAt = e.OccurredAt.UTC()

		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return events, nil
}
