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

// DecisionEngineService orchestrates AccessGuard and RateLimiter into
// one per-request verdict. Step order is a correctness property: a
// blacklisted identity never reaches the counter, and a bypassed
// identity is never counted.
type DecisionEngineService struct {
	guard    ports.AccessGuard
	limiter  ports.RateLimiter
	auditSvc ports.AuditService
	logger   *logrus.Logger
}

func NewDecisionEngineService(guard ports.AccessGuard, limiter ports.RateLimiter, auditSvc ports.AuditService, logger *logrus.Logger) *DecisionEngineService {
	return &DecisionEngineService{guard: guard, limiter: limiter, auditSvc: auditSvc, logger: logger}
}

// Decide resolves the endpoint's policy and runs the decision state
// machine.
func (s *DecisionEngineService) Decide(ctx context.Context, id access.Identity, endpoint string) access.Verdict {
	policy := s.limiter.Policy(endpoint)
	return s.DecideWithLimits(ctx, id, endpoint, policy.Limit, policy.Window)
}

// DecideWithLimits runs the state machine against an explicit base
// limit and window: blacklist check, whitelist bypass, then quota.
// Each state is terminal for the call.
func (s *DecisionEngineService) DecideWithLimits(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) access.Verdict {
	class := s.guard.Classify(ctx, id)

	switch class.State {
	case access.ClassBlocked:
		s.recordEvent(ctx, id, endpoint, audit.EventBlacklistHit, "")
		return access.VerdictBlacklisted

	case access.ClassBypassed:
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": id.IP, "endpoint": endpoint}).Debug("rate limit bypassed for whitelisted identity")
		}
		s.recordEvent(ctx, id, endpoint, audit.EventWhitelistBypass, "")
		return access.VerdictAllow
	}

	effectiveLimit := limit
	if class.Multiplier != 1.0 {
		effectiveLimit = int(float64(limit) * class.Multiplier)
	}

	exceeded, total := s.limiter.Check(ctx, id, endpoint, effectiveLimit, window)
	if exceeded {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": id.IP, "endpoint": endpoint, "total": total, "limit": effectiveLimit}).Warn("rate limit exceeded")
		}
		s.guard.RecordViolation(ctx, id, endpoint)
		s.recordEvent(ctx, id, endpoint, audit.EventRateLimited, fmt.Sprintf("%d requests against limit %d", total, effectiveLimit))
		return access.VerdictRateLimited
	}

	return access.VerdictAllow
}

// recordEvent persists an audit row; failures are logged by the audit
// service and never surface into the verdict.
func (s *DecisionEngineService) recordEvent(ctx context.Context, id access.Identity, endpoint string, kind audit.EventKind, detail string) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.RecordEvent(ctx, &audit.RecordEventRequest{Identity: id, Endpoint: endpoint, Kind: kind, Detail: detail})
}
