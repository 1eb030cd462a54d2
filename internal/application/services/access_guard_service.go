package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
	"github.com/gatewarden/gatewarden/internal/core/ports"
)

// GuardConfig groups the escalation policy parameters.
type GuardConfig struct {
	// ViolationThreshold is the number of violations inside the lookback
	// that triggers an automatic blacklist entry.
	ViolationThreshold int
	// ViolationLookback is the trailing window violations are counted over.
	ViolationLookback time.Duration
	// AutoBlacklistDuration is how long an auto-created entry lasts.
	AutoBlacklistDuration time.Duration
}

// AccessGuardService classifies identities against the allow/deny
// lists and escalates chronic rate-limit violators. It also carries
// the mutating administrative list operations.
type AccessGuardService struct {
	lists      ports.ListStore
	violations ports.ViolationCounter
	auditSvc   ports.AuditService
	alerts     ports.AlertService
	clock      ports.Clock
	cfg        GuardConfig
	logger     *logrus.Logger
}

func NewAccessGuardService(lists ports.ListStore, violations ports.ViolationCounter, auditSvc ports.AuditService, alerts ports.AlertService, clock ports.Clock, cfg *GuardConfig, logger *logrus.Logger) *AccessGuardService {
	// Apply defaults
	c := GuardConfig{ViolationThreshold: 5, ViolationLookback: time.Hour, AutoBlacklistDuration: 24 * time.Hour}
	if cfg != nil {
		if cfg.ViolationThreshold > 0 {
			c.ViolationThreshold = cfg.ViolationThreshold
		}
		if cfg.ViolationLookback > 0 {
			c.ViolationLookback = cfg.ViolationLookback
		}
		if cfg.AutoBlacklistDuration > 0 {
			c.AutoBlacklistDuration = cfg.AutoBlacklistDuration
		}
	}
	if clock == nil {
		clock = ports.SystemClock()
	}
	return &AccessGuardService{lists: lists, violations: violations, auditSvc: auditSvc, alerts: alerts, clock: clock, cfg: c, logger: logger}
}

// Classify checks the blacklist first, then the whitelist. On store
// failure classification degrades to Normal(1.0): no blocking, but
// counting stays on at the base rate.
func (s *AccessGuardService) Classify(ctx context.Context, id access.Identity) access.Classification {
	now := s.clock.Now()

	entry, err := s.lists.FindBlacklist(ctx, id.IP, id.PrincipalOrNil(), now)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": id.IP}).WithError(err).Error("access guard: blacklist lookup failed; treating identity as normal")
		}
		return access.Normal(1.0)
	}
	if entry != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": id.IP, "target_type": entry.TargetType, "reason": entry.Reason}).Warn("blacklisted identity refused")
		}
		return access.Blocked()
	}

	wl, err := s.lists.FindWhitelist(ctx, id.IP, id.PrincipalOrNil(), now)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": id.IP}).WithError(err).Error("access guard: whitelist lookup failed; treating identity as normal")
		}
		return access.Normal(1.0)
	}
	if wl == nil {
		return access.Normal(1.0)
	}
	if wl.BypassRateLimits {
		return access.Bypassed(wl.CustomRateMultiplier)
	}
	return access.Normal(wl.CustomRateMultiplier)
}

// RecordViolation registers one rate-limit violation for the IP and
// auto-blacklists it once the threshold is reached inside the
// lookback. Re-triggering while already blacklisted refreshes the
// existing entry instead of duplicating it.
func (s *AccessGuardService) RecordViolation(ctx context.Context, id access.Identity, endpoint string) {
	now := s.clock.Now()

	count, err := s.violations.RecordAndCount(ctx, id.IP, id.PrincipalOrNil(), s.cfg.ViolationLookback, now)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": id.IP, "endpoint": endpoint}).WithError(err).Warn("access guard: failed to count violations; skipping escalation check")
		}
		return
	}
	if count < s.cfg.ViolationThreshold {
		return
	}

	duration := s.cfg.AutoBlacklistDuration
	req := &access.UpsertBlacklistRequest{
		IPAddress:   id.IP,
		PrincipalID: id.PrincipalOrNil(),
		Reason:      access.ReasonRateLimitAbuse,
		Duration:    &duration,
		Description: fmt.Sprintf("auto-blacklisted after %d rate limit violations within %s; blocked for %s", count, s.cfg.ViolationLookback, duration),
		CreatedBy:   access.CreatedBySystem,
	}
	entry, err := s.lists.UpsertBlacklist(ctx, req, now)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": id.IP}).WithError(err).Error("access guard: failed to auto-blacklist identity")
		}
		return
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"ip": id.IP, "violations": count, "expires_at": entry.ExpiresAt}).Warn("identity auto-blacklisted for rate limit abuse")
	}
	if s.auditSvc != nil {
		_ = s.auditSvc.RecordEvent(ctx, &audit.RecordEventRequest{
			Identity: id,
			Endpoint: endpoint,
			Kind:     audit.EventAutoBlacklist,
			Detail:   fmt.Sprintf("%d violations within %s", count, s.cfg.ViolationLookback),
		})
	}
	if s.alerts != nil {
		if err := s.alerts.SendEscalationAlert(ctx, entry); err != nil && s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": id.IP}).WithError(err).Warn("access guard: failed to send escalation alert")
		}
	}
}

// AddToBlacklist creates or refreshes a blacklist entry (administrative).
func (s *AccessGuardService) AddToBlacklist(ctx context.Context, req *access.UpsertBlacklistRequest) (*access.BlacklistEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.lists.UpsertBlacklist(ctx, req, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert blacklist entry: %w", err)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"ip": req.IPAddress, "principal_id": req.PrincipalID, "reason": req.Reason, "created_by": req.CreatedBy}).Info("blacklist entry upserted")
	}
	return entry, nil
}

// AddToWhitelist creates or refreshes a whitelist entry (administrative).
func (s *AccessGuardService) AddToWhitelist(ctx context.Context, req *access.UpsertWhitelistRequest) (*access.WhitelistEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.lists.UpsertWhitelist(ctx, req, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert whitelist entry: %w", err)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"ip": req.IPAddress, "principal_id": req.PrincipalID, "reason": req.Reason, "created_by": req.CreatedBy}).Info("whitelist entry upserted")
	}
	return entry, nil
}

// RemoveFromLists deactivates matching entries on both lists.
func (s *AccessGuardService) RemoveFromLists(ctx context.Context, id access.Identity) (int64, error) {
	if id.IP == "" && !id.HasPrincipal() {
		return 0, fmt.Errorf("%w: either ip or principal is required", access.ErrValidation)
	}
	affected, err := s.lists.Deactivate(ctx, id.IP, id.PrincipalOrNil())
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate list entries: %w", err)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"ip": id.IP, "principal_id": id.PrincipalOrNil(), "affected": affected}).Info("list entries deactivated")
	}
	return affected, nil
}
