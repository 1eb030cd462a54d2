package ports

import (
	"context"

	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
)

// EventRepository defines the interface for decision event data operations
type EventRepository interface {
	Create(ctx context.Context, event *audit.DecisionEvent) error
	List(ctx context.Context, filter *audit.EventFilter) ([]*audit.DecisionEvent, error)
	Count(ctx context.Context, filter *audit.EventFilter) (int, error)
}

// AuditService defines the interface for decision event business logic
type AuditService interface {
	RecordEvent(ctx context.Context, req *audit.RecordEventRequest) error
	GetEvents(ctx context.Context, filter *audit.EventFilter) ([]*audit.DecisionEvent, int, error)
}
