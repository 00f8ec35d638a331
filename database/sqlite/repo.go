// Package sqlite stores download audit events in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/assetgate"
)

// timeLayout keeps a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Repo implements assetgate.AuditRepo.
type Repo struct {
	db        *sql.DB
	tableName string
}

// NewRepo creates a Repo over an already migrated database.
func NewRepo(db *sql.DB, tables assetgate.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: quoteIdentifier(tables.Audit)}, nil
}

// Record inserts event. A zero ID or OccurredAt is filled in.
func (r *Repo) Record(ctx context.Context, event assetgate.DownloadEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, subject, auth_method, client_ip, file_name, content_type, size_bytes, correlation_id, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, r.tableName)

	_, err := r.db.ExecContext(ctx, query,
		event.ID.String(),
		event.Subject,
		string(event.AuthMethod),
		event.ClientIP,
		event.FileName,
		event.ContentType,
		event.SizeBytes,
		event.CorrelationID,
		event.OccurredAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}

	return nil
}

// List returns matching events, most recent first.
func (r *Repo) List(ctx context.Context, q assetgate.AuditQuery) ([]assetgate.DownloadEvent, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, subject, auth_method, client_ip, file_name, content_type, size_bytes, correlation_id, occurred_at
		FROM %s
		WHERE (? = '' OR subject = ?) AND (? = '' OR file_name = ?)
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, r.tableName)

	rows, err := r.db.QueryContext(ctx, query, q.Subject, q.Subject, q.FileName, q.FileName, q.EffectiveLimit())
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []assetgate.DownloadEvent{}
	for rows.Next() {
		var (
			e                 assetgate.DownloadEvent
			id, method, occur string
		)
		if err := rows.Scan(&id, &e.Subject, &method, &e.ClientIP, &e.FileName, &e.ContentType, &e.SizeBytes, &e.CorrelationID, &occur); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}

		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("list: parse uuid: %w", err)
		}
		if e.OccurredAt, err = time.Parse(timeLayout, occur); err != nil {
			return nil, fmt.Errorf("list: parse occurred_at: %w", err)
		}
		e.AuthMethod = assetgate.AuthMethod(method)

		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return events, nil
}
