package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gatewarden/gatewarden/internal/core/ports"
)

// WindowViolationCounter derives violation pressure from the persisted
// rate windows instead of a dedicated counter. Each window row for the
// IP inside the lookback counts as one violation signal. Useful when
// Redis is not deployed; the trade-off is a coarser count.
type WindowViolationCounter struct {
	windows ports.WindowStore
}

func NewWindowViolationCounter(windows ports.WindowStore) *WindowViolationCounter {
	return &WindowViolationCounter{windows: windows}
}

func (c *WindowViolationCounter) RecordAndCount(ctx context.Context, ip string, principal *uuid.UUID, window time.Duration, now time.Time) (int, error) {
	return c.windows.CountRecentWindows(ctx, ip, now.Add(-window))
}
