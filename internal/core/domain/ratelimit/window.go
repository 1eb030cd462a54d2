package ratelimit

import (
	"time"

	"github.com/google/uuid"
)

// RateWindow is one fixed counting window for an (ip, principal,
// endpoint) key. At most one live window exists per key; expired
// windows for the key are pruned before a new one is created.
type RateWindow struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	IPAddress    string     `json:"ip_address" db:"ip_address"`
	PrincipalID  *uuid.UUID `json:"principal_id" db:"principal_id"`
	Endpoint     string     `json:"endpoint" db:"endpoint"`
	RequestCount int        `json:"request_count" db:"request_count"`
	WindowStart  time.Time  `json:"window_start" db:"window_start"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// WindowKey identifies the counting window a request belongs to. The
// principal is held by value so keys compare (and hash) by content,
// not by pointer identity.
type WindowKey struct {
	IPAddress   string
	PrincipalID uuid.NullUUID
	Endpoint    string
}

// NewWindowKey builds a key from an optional principal reference.
func NewWindowKey(ip string, principal *uuid.UUID, endpoint string) WindowKey {
	key := WindowKey{IPAddress: ip, Endpoint: endpoint}
	if principal != nil {
		key.PrincipalID = uuid.NullUUID{UUID: *principal, Valid: true}
	}
	return key
}

// String renders the key in a stable form, used for logging and for
// hashing the key into an advisory lock id.
func (k WindowKey) String() string {
	principal := ""
	if k.PrincipalID.Valid {
		principal = k.PrincipalID.UUID.String()
	}
	return k.IPAddress + "|" + principal + "|" + k.Endpoint
}

// WindowFilter narrows administrative window queries.
type WindowFilter struct {
	IPAddress   *string    `json:"ip_address,omitempty" query:"ip_address"`
	PrincipalID *uuid.UUID `json:"principal_id,omitempty" query:"principal_id"`
	Endpoint    *string    `json:"endpoint,omitempty" query:"endpoint"`
	Since       *time.Time `json:"since,omitempty" query:"since"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}

// WindowStats aggregates window state for the reporting surface.
type WindowStats struct {
	TotalRequests    int `json:"total_requests"`
	UniqueIPs        int `json:"unique_ips"`
	UniquePrincipals int `json:"unique_principals"`
	UniqueEndpoints  int `json:"unique_endpoints"`
}
