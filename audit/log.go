package audit

import (
	"context"
	"log/slog"

	"github.com/sagarc03/assetgate"
)

// Log is an AuditSink that writes each event as an "asset_download" record.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log sink. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Record(ctx context.Context, e assetgate.DownloadEvent) error {
	l.logger.LogAttrs(ctx, slog.LevelInfo, "asset_download",
		slog.String("event_id", e.ID.String()),
		slog.String("subject", e.Subject),
		slog.String("auth_method", string(e.AuthMethod)),
		slog.String("client_ip", e.ClientIP),
		slog.String("file", e.FileName),
		slog.String("content_type", e.ContentType),
		slog.Int64("size_bytes", e.SizeBytes),
		slog.String("correlation_id", e.CorrelationID),
		slog.Time("occurred_at", e.OccurredAt),
	)
	return nil
}
