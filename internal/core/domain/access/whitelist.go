package access

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type WhitelistReason string

const (
	ReasonTrustedUser    WhitelistReason = "trusted_user"
	ReasonAdminUser      WhitelistReason = "admin_user"
	ReasonAPIService     WhitelistReason = "api_service"
	ReasonInternalSystem WhitelistReason = "internal_system"
	ReasonVIPUser        WhitelistReason = "vip_user"
	ReasonTesting        WhitelistReason = "testing"
	ReasonManualAllow    WhitelistReason = "manual"
	ReasonAutomatedAllow WhitelistReason = "automated"
)

func (r WhitelistReason) IsValid() bool {
	switch r {
	case ReasonTrustedUser, ReasonAdminUser, ReasonAPIService, ReasonInternalSystem,
		ReasonVIPUser, ReasonTesting, ReasonManualAllow, ReasonAutomatedAllow:
		return true
	default:
		return false
	}
}

// WhitelistEntry grants an identity trust: either a full rate-limit
// bypass or a widened quota via the multiplier. Usage is tracked on
// every match as a side effect of the lookup itself.
type WhitelistEntry struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	IPAddress            *string         `json:"ip_address" db:"ip_address"`
	PrincipalID          *uuid.UUID      `json:"principal_id" db:"principal_id"`
	TargetType           TargetType      `json:"target_type" db:"target_type"`
	Reason               WhitelistReason `json:"reason" db:"reason"`
	Description          *string         `json:"description" db:"description"`
	IsPermanent          bool            `json:"is_permanent" db:"is_permanent"`
	ExpiresAt            *time.Time      `json:"expires_at" db:"expires_at"`
	BypassRateLimits     bool            `json:"bypass_rate_limits" db:"bypass_rate_limits"`
	CustomRateMultiplier float64         `json:"custom_rate_multiplier" db:"custom_rate_multiplier"`
	UsageCount           int             `json:"usage_count" db:"usage_count"`
	LastUsed             *time.Time      `json:"last_used" db:"last_used"`
	CreatedBy            string          `json:"created_by" db:"created_by"`
	IsActive             bool            `json:"is_active" db:"is_active"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

func (e *WhitelistEntry) IsExpired(now time.Time) bool {
	if e.IsPermanent {
		return false
	}
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// UpsertWhitelistRequest creates or refreshes a whitelist entry.
// Duration nil means permanent.
type UpsertWhitelistRequest struct {
	IPAddress            string          `json:"ip_address,omitempty"`
	PrincipalID          *uuid.UUID      `json:"principal_id,omitempty"`
	Reason               WhitelistReason `json:"reason"`
	Duration             *time.Duration  `json:"duration,omitempty"`
	Description          string          `json:"description,omitempty"`
	CreatedBy            string          `json:"created_by"`
	BypassRateLimits     *bool           `json:"bypass_rate_limits,omitempty"`
	CustomRateMultiplier *float64        `json:"custom_rate_multiplier,omitempty"`
}

func (r *UpsertWhitelistRequest) Validate() error {
	if r.IPAddress == "" && r.PrincipalID == nil {
		return fmt.Errorf("%w: either ip_address or principal_id is required", ErrValidation)
	}
	if r.Reason == "" {
		r.Reason = ReasonTrustedUser
	}
	if !r.Reason.IsValid() {
		return fmt.Errorf("%w: unknown whitelist reason %q", ErrValidation, r.Reason)
	}
	if r.Duration != nil && *r.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	if r.CustomRateMultiplier != nil && *r.CustomRateMultiplier <= 0 {
		return fmt.Errorf("%w: custom_rate_multiplier must be > 0", ErrValidation)
	}
	if r.CreatedBy == "" {
		r.CreatedBy = CreatedBySystem
	}
	return nil
}

// Bypass resolves the request's bypass flag, defaulting to true.
func (r *UpsertWhitelistRequest) Bypass() bool {
	if r.BypassRateLimits == nil {
		return true
	}
	return *r.BypassRateLimits
}

// Multiplier resolves the request's multiplier, defaulting to 1.0.
func (r *UpsertWhitelistRequest) Multiplier() float64 {
	if r.CustomRateMultiplier == nil {
		return 1.0
	}
	return *r.CustomRateMultiplier
}

// WhitelistFilter narrows administrative whitelist queries.
type WhitelistFilter struct {
	IPAddress        *string          `json:"ip_address,omitempty" query:"ip_address"`
	PrincipalID      *uuid.UUID       `json:"principal_id,omitempty" query:"principal_id"`
	TargetType       *TargetType      `json:"target_type,omitempty" query:"target_type"`
	Reason           *WhitelistReason `json:"reason,omitempty" query:"reason"`
	IsActive         *bool            `json:"is_active,omitempty" query:"is_active"`
	IsPermanent      *bool            `json:"is_permanent,omitempty" query:"is_permanent"`
	BypassRateLimits *bool            `json:"bypass_rate_limits,omitempty" query:"bypass_rate_limits"`
	CreatedBy        *string          `json:"created_by,omitempty" query:"created_by"`
	Limit            int              `json:"limit"`
	Offset           int              `json:"offset"`
}

// WhitelistStats aggregates list state for the reporting surface.
type WhitelistStats struct {
	TotalEntries     int                     `json:"total_entries"`
	ActiveEntries    int                     `json:"active_entries"`
	PermanentEntries int                     `json:"permanent_entries"`
	TemporaryEntries int                     `json:"temporary_entries"`
	ExpiredActive    int                     `json:"expired_entries"`
	BypassEnabled    int                     `json:"bypass_enabled"`
	BypassDisabled   int                     `json:"bypass_disabled"`
	UniqueIPs        int                     `json:"unique_ips"`
	UniquePrincipals int                     `json:"unique_principals"`
	TotalUsage       int                     `json:"total_usage"`
	ByType           map[TargetType]int      `json:"by_type"`
	ByReason         map[WhitelistReason]int `json:"by_reason"`
}
