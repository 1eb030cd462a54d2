package ports

import (
	"context"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
)

// Pagination describes one page of an administrative listing.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	TotalCount   int  `json:"total_count"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
	NextPage     *int `json:"next_page"`
	PreviousPage *int `json:"previous_page"`
}

// PageRequest selects a page; the service caps PageSize.
type PageRequest struct {
	Page     int `json:"page" query:"page"`
	PageSize int `json:"page_size" query:"page_size"`
}

// ReportService provides the read-only administrative views. It never
// influences decisions; reads are consistent with store state.
type ReportService interface {
	GetWindows(ctx context.Context, filter *ratelimit.WindowFilter, page PageRequest) ([]*ratelimit.RateWindow, *Pagination, *ratelimit.WindowStats, error)
	GetBlacklist(ctx context.Context, filter *access.BlacklistFilter, page PageRequest) ([]*access.BlacklistEntry, *Pagination, *access.BlacklistStats, error)
	GetWhitelist(ctx context.Context, filter *access.WhitelistFilter, page PageRequest) ([]*access.WhitelistEntry, *Pagination, *access.WhitelistStats, error)
	GetEvents(ctx context.Context, filter *audit.EventFilter, page PageRequest) ([]*audit.DecisionEvent, *Pagination, error)
}

// ListAdminService is the mutating administrative surface over the
// allow/deny lists.
type ListAdminService interface {
	AddToBlacklist(ctx context.Context, req *access.UpsertBlacklistRequest) (*access.BlacklistEntry, error)
	AddToWhitelist(ctx context.Context, req *access.UpsertWhitelistRequest) (*access.WhitelistEntry, error)
	RemoveFromLists(ctx context.Context, id access.Identity) (int64, error)
}
