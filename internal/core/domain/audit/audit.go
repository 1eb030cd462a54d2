package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
)

// DecisionEvent is one audit row written by the decision path:
// blacklist hits, whitelist bypasses, rate-limit refusals and
// automatic escalations. Event persistence must never fail a decision.
type DecisionEvent struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	IPAddress   string     `json:"ip_address" db:"ip_address"`
	PrincipalID *uuid.UUID `json:"principal_id" db:"principal_id"`
	Endpoint    string     `json:"endpoint" db:"endpoint"`
	Kind        EventKind  `json:"kind" db:"kind"`
	Detail      *string    `json:"detail" db:"detail"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type EventKind string

const (
	EventBlacklistHit    EventKind = "blacklist_hit"
	EventWhitelistBypass EventKind = "whitelist_bypass"
	EventRateLimited     EventKind = "rate_limited"
	EventAutoBlacklist   EventKind = "auto_blacklist"
)

// RecordEventRequest describes a decision event to record.
type RecordEventRequest struct {
	Identity access.Identity `json:"identity"`
	Endpoint string          `json:"endpoint"`
	Kind     EventKind       `json:"kind"`
	Detail   string          `json:"detail,omitempty"`
}

// EventFilter narrows administrative event queries.
type EventFilter struct {
	IPAddress   *string    `json:"ip_address,omitempty" query:"ip_address"`
	PrincipalID *uuid.UUID `json:"principal_id,omitempty" query:"principal_id"`
	Endpoint    *string    `json:"endpoint,omitempty" query:"endpoint"`
	Kind        *EventKind `json:"kind,omitempty" query:"kind"`
	Since       *time.Time `json:"since,omitempty" query:"since"`
	Until       *time.Time `json:"until,omitempty" query:"until"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}
