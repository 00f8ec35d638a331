package audit

import (
	"context"
	"errors"

	"github.com/sagarc03/assetgate"
)

// Multi records every event in each of its sinks, in order. A failing sink
// does not stop the others; their errors are joined.
type Multi []assetgate.AuditSink

func (m Multi) Record(ctx context.Context, e assetgate.DownloadEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
