package access

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TargetType states which part of an identity a list entry matches.
type TargetType string

const (
	TargetIP   TargetType = "ip"
	TargetUser TargetType = "user"
	TargetBoth TargetType = "both"
)

func (t TargetType) IsValid() bool {
	switch t {
	case TargetIP, TargetUser, TargetBoth:
		return true
	default:
		return false
	}
}

// TargetTypeFor derives the entry type from which identity parts are present.
func TargetTypeFor(ip string, principal *uuid.UUID) TargetType {
	switch {
	case ip != "" && principal != nil:
		return TargetBoth
	case ip != "":
		return TargetIP
	default:
		return TargetUser
	}
}

type BlacklistReason string

const (
	ReasonRateLimitAbuse     BlacklistReason = "rate_limit_abuse"
	ReasonSuspiciousActivity BlacklistReason = "suspicious_activity"
	ReasonSecurityViolation  BlacklistReason = "security_violation"
	ReasonSpam               BlacklistReason = "spam"
	ReasonManual             BlacklistReason = "manual"
	ReasonAutomated          BlacklistReason = "automated"
)

func (r BlacklistReason) IsValid() bool {
	switch r {
	case ReasonRateLimitAbuse, ReasonSuspiciousActivity, ReasonSecurityViolation,
		ReasonSpam, ReasonManual, ReasonAutomated:
		return true
	default:
		return false
	}
}

// CreatedBySystem is the creator recorded for automatic escalations.
const CreatedBySystem = "system"

// BlacklistEntry blocks an identity outright. At most one entry exists
// per (ip, principal, target_type); re-adding updates the existing row.
type BlacklistEntry struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	IPAddress      *string         `json:"ip_address" db:"ip_address"`
	PrincipalID    *uuid.UUID      `json:"principal_id" db:"principal_id"`
	TargetType     TargetType      `json:"target_type" db:"target_type"`
	Reason         BlacklistReason `json:"reason" db:"reason"`
	Description    *string         `json:"description" db:"description"`
	IsPermanent    bool            `json:"is_permanent" db:"is_permanent"`
	ExpiresAt      *time.Time      `json:"expires_at" db:"expires_at"`
	ViolationCount int             `json:"violation_count" db:"violation_count"`
	LastViolation  time.Time       `json:"last_violation" db:"last_violation"`
	CreatedBy      string          `json:"created_by" db:"created_by"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether a temporary entry has lapsed at the given time.
func (e *BlacklistEntry) IsExpired(now time.Time) bool {
	if e.IsPermanent {
		return false
	}
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// UpsertBlacklistRequest creates or refreshes a blacklist entry.
// Duration nil means permanent.
type UpsertBlacklistRequest struct {
	IPAddress   string          `json:"ip_address,omitempty"`
	PrincipalID *uuid.UUID      `json:"principal_id,omitempty"`
	Reason      BlacklistReason `json:"reason"`
	Duration    *time.Duration  `json:"duration,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedBy   string          `json:"created_by"`
}

func (r *UpsertBlacklistRequest) Validate() error {
	if r.IPAddress == "" && r.PrincipalID == nil {
		return fmt.Errorf("%w: either ip_address or principal_id is required", ErrValidation)
	}
	if r.Reason == "" {
		r.Reason = ReasonRateLimitAbuse
	}
	if !r.Reason.IsValid() {
		return fmt.Errorf("%w: unknown blacklist reason %q", ErrValidation, r.Reason)
	}
	if r.Duration != nil && *r.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	if r.CreatedBy == "" {
		r.CreatedBy = CreatedBySystem
	}
	return nil
}

// BlacklistFilter narrows administrative blacklist queries.
type BlacklistFilter struct {
	IPAddress   *string          `json:"ip_address,omitempty" query:"ip_address"`
	PrincipalID *uuid.UUID       `json:"principal_id,omitempty" query:"principal_id"`
	TargetType  *TargetType      `json:"target_type,omitempty" query:"target_type"`
	Reason      *BlacklistReason `json:"reason,omitempty" query:"reason"`
	IsActive    *bool            `json:"is_active,omitempty" query:"is_active"`
	IsPermanent *bool            `json:"is_permanent,omitempty" query:"is_permanent"`
	CreatedBy   *string          `json:"created_by,omitempty" query:"created_by"`
	Limit       int              `json:"limit"`
	Offset      int              `json:"offset"`
}

// BlacklistStats aggregates list state for the reporting surface.
type BlacklistStats struct {
	TotalEntries     int                     `json:"total_entries"`
	ActiveEntries    int                     `json:"active_entries"`
	PermanentEntries int                     `json:"permanent_entries"`
	TemporaryEntries int                     `json:"temporary_entries"`
	ExpiredActive    int                     `json:"expired_entries"`
	UniqueIPs        int                     `json:"unique_ips"`
	UniquePrincipals int                     `json:"unique_principals"`
	ByType           map[TargetType]int      `json:"by_type"`
	ByReason         map[BlacklistReason]int `json:"by_reason"`
}
