package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
	"github.com/gatewarden/gatewarden/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReportService serves the paginated administrative views over
// windows, lists and decision events. Read-only; never touches the
// decision path.
type ReportService struct {
	windows ports.WindowReporter
	lists   ports.ListReporter
	events  ports.EventRepository
	clock   ports.Clock
	logger  *logrus.Logger
}

func NewReportService(windows ports.WindowReporter, lists ports.ListReporter, events ports.EventRepository, clock ports.Clock, logger *logrus.Logger) ports.ReportService {
	if clock == nil {
		clock = ports.SystemClock()
	}
	return &ReportService{windows: windows, lists: lists, events: events, clock: clock, logger: logger}
}

// paginate normalizes a page request against the total row count and
// returns the page descriptor plus the limit/offset to query with.
func paginate(page ports.PageRequest, total int) (*ports.Pagination, int, int) {
	size := page.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	totalPages := (total + size - 1) / size
	current := page.Page
	if current < 1 {
		current = 1
	}
	if totalPages > 0 && current > totalPages {
		current = totalPages
	}

	p := &ports.Pagination{
		CurrentPage: current,
		PageSize:    size,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasNext:     current < totalPages,
		HasPrevious: current > 1,
	}
	if p.HasNext {
		next := current + 1
		p.NextPage = &next
	}
	if p.HasPrevious {
		previous := current - 1
		p.PreviousPage = &previous
	}

	return p, size, (current - 1) * size
}

func (s *ReportService) GetWindows(ctx context.Context, filter *ratelimit.WindowFilter, page ports.PageRequest) ([]*ratelimit.RateWindow, *ports.Pagination, *ratelimit.WindowStats, error) {
	if filter == nil {
		filter = &ratelimit.WindowFilter{}
	}

	total, err := s.windows.Count(ctx, filter)
	if err != nil {
		return nil, nil, nil, err
	}
	pagination, limit, offset := paginate(page, total)
	filter.Limit = limit
	filter.Offset = offset

	rows, err := s.windows.List(ctx, filter)
	if err != nil {
		return nil, nil, nil, err
	}
	stats, err := s.windows.Stats(ctx, filter)
	if err != nil {
		return nil, nil, nil, err
	}
	return rows, pagination, stats, nil
}

func (s *ReportService) GetBlacklist(ctx context.Context, filter *access.BlacklistFilter, page ports.PageRequest) ([]*access.BlacklistEntry, *ports.Pagination, *access.BlacklistStats, error) {
	if filter == nil {
		filter = &access.BlacklistFilter{}
	}

	total, err := s.lists.CountBlacklist(ctx, filter)
	if err != nil {
		return nil, nil, nil, err
	}
	pagination, limit, offset := paginate(page, total)
	filter.Limit = limit
	filter.Offset = offset

	entries, err := s.lists.ListBlacklist(ctx, filter)
	if err != nil {
		return nil, nil, nil, err
	}
	stats, err := s.lists.BlacklistStats(ctx, filter, s.clock.Now())
	if err != nil {
		return nil, nil, nil, err
	}
	return entries, pagination, stats, nil
}

func (s *ReportService) GetWhitelist(ctx context.Context, filter *access.WhitelistFilter, page ports.PageRequest) ([]*access.WhitelistEntry, *ports.Pagination, *access.WhitelistStats, error) {
	if filter == nil {
		filter = &access.WhitelistFilter{}
	}

	total, err := s.lists.CountWhitelist(ctx, filter)
	if err != nil {
		return nil, nil, nil, err
	}
	pagination, limit, offset := paginate(page, total)
	filter.Limit = limit
	filter.Offset = offset

	entries, err := s.lists.ListWhitelist(ctx, filter)
	if err != nil {
		return nil, nil, nil, err
	}
	stats, err := s.lists.WhitelistStats(ctx, filter, s.clock.Now())
	if err != nil {
		return nil, nil, nil, err
	}
	return entries, pagination, stats, nil
}

func (s *ReportService) GetEvents(ctx context.Context, filter *audit.EventFilter, page ports.PageRequest) ([]*audit.DecisionEvent, *ports.Pagination, error) {
	if filter == nil {
		filter = &audit.EventFilter{}
	}

	total, err := s.events.Count(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	pagination, limit, offset := paginate(page, total)
	filter.Limit = limit
	filter.Offset = offset

	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return events, pagination, nil
}
