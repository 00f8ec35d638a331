package assetgate

import "context"

// AuditSink receives download events. Implementations may block or fail;
// callers on the request path must not let either affect the response.
type AuditSink interface {
	Record(ctx context.Context, event DownloadEvent) error
}

// AuditRepo is an AuditSink that can also read back recorded events.
type AuditRepo interface {
	AuditSink

	// List returns the most recent events first, filtered by q.
	List(ctx context.Context, q AuditQuery) ([]DownloadEvent, error)
}

// KeyDirectory looks up enabled API key records by digest.
type KeyDirectory interface {
	// FindByDigest returns the enabled record whose KeyHash equals digest,
	// compared case-insensitively.
	FindByDigest(digest string) (APIKeyRecord, bool)
}
