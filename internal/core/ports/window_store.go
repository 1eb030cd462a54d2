package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
)

// WindowStore persists fixed counting windows keyed on (ip, principal,
// endpoint). CheckAndIncrement must be atomic per key: two concurrent
// requests may never both create the key's row or both increment from
// a stale read. Implementations serialize through the store's own
// transaction or locking primitives.
type WindowStore interface {
	// CheckAndIncrement prunes the key's windows older than now-window,
	// get-or-creates the live row (incrementing when it already existed),
	// and returns whether the summed count for the key now exceeds limit.
	CheckAndIncrement(ctx context.Context, key ratelimit.WindowKey, limit int, window time.Duration, now time.Time) (exceeded bool, total int, err error)

	// CountRecentWindows counts window rows for the IP (all endpoints)
	// started at or after since. Used as the escalation fallback signal.
	CountRecentWindows(ctx context.Context, ip string, since time.Time) (int, error)

	// Reset deletes all windows for the key (administrative).
	Reset(ctx context.Context, key ratelimit.WindowKey) (int64, error)

	// Purge deletes windows started before the cutoff (administrative).
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}

// WindowReporter exposes the reporting view over persisted windows.
type WindowReporter interface {
	List(ctx context.Context, filter *ratelimit.WindowFilter) ([]*ratelimit.RateWindow, error)
	Count(ctx context.Context, filter *ratelimit.WindowFilter) (int, error)
	Stats(ctx context.Context, filter *ratelimit.WindowFilter) (*ratelimit.WindowStats, error)
}

// ViolationCounter tracks rate-limit violation pressure per IP over a
// trailing window, feeding automatic escalation. The exact counting
// method is a policy parameter, not a correctness requirement.
type ViolationCounter interface {
	// RecordAndCount registers one violation for the IP and returns the
	// number observed within the trailing window, the new one included.
	RecordAndCount(ctx context.Context, ip string, principal *uuid.UUID, window time.Duration, now time.Time) (int, error)
}
