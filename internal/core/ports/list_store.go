package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
)

// ListStore persists blacklist and whitelist entries. Lookups are
// expiry-aware: any read that sees an expired-but-active row flips it
// inactive (opportunistically batched) before evaluating the match.
// Upserts on the same (ip, principal, target_type) key are atomic
// get-or-create-or-update.
type ListStore interface {
	// FindBlacklist returns the first active, non-expired entry matching
	// the identity, or nil when none matches. An IP match (type ip|both)
	// is checked before a principal match (type user|both).
	FindBlacklist(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.BlacklistEntry, error)

	// FindWhitelist mirrors FindBlacklist and, on a hit, increments the
	// entry's usage_count and stamps last_used as part of the lookup.
	FindWhitelist(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.WhitelistEntry, error)

	// UpsertBlacklist creates the entry or, on the uniqueness conflict,
	// bumps violation_count, refreshes expiry and reactivates the row.
	UpsertBlacklist(ctx context.Context, req *access.UpsertBlacklistRequest, now time.Time) (*access.BlacklistEntry, error)

	// UpsertWhitelist creates the entry or updates its bypass flag,
	// multiplier and expiry, reactivating the row.
	UpsertWhitelist(ctx context.Context, req *access.UpsertWhitelistRequest, now time.Time) (*access.WhitelistEntry, error)

	// Deactivate marks entries matching all provided fields inactive on
	// both lists and reports how many rows changed.
	Deactivate(ctx context.Context, ip string, principal *uuid.UUID) (int64, error)
}

// ListReporter exposes the reporting view over list entries.
type ListReporter interface {
	ListBlacklist(ctx context.Context, filter *access.BlacklistFilter) ([]*access.BlacklistEntry, error)
	CountBlacklist(ctx context.Context, filter *access.BlacklistFilter) (int, error)
	BlacklistStats(ctx context.Context, filter *access.BlacklistFilter, now time.Time) (*access.BlacklistStats, error)

	ListWhitelist(ctx context.Context, filter *access.WhitelistFilter) ([]*access.WhitelistEntry, error)
	CountWhitelist(ctx context.Context, filter *access.WhitelistFilter) (int, error)
	WhitelistStats(ctx context.Context, filter *access.WhitelistFilter, now time.Time) (*access.WhitelistStats, error)
}
