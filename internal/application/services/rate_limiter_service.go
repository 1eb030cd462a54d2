package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
	"github.com/gatewarden/gatewarden/internal/core/ports"
)

// RateLimiterService implements RateLimiter over a WindowStore with a
// static PolicyTable. Counting is fixed-window; storage failure is
// fail-open so protected endpoints stay available.
type RateLimiterService struct {
	windows  ports.WindowStore
	policies *ratelimit.PolicyTable
	clock    ports.Clock
	logger   *logrus.Logger
}

func NewRateLimiterService(windows ports.WindowStore, policies *ratelimit.PolicyTable, clock ports.Clock, logger *logrus.Logger) *RateLimiterService {
	if policies == nil {
		policies = ratelimit.NewPolicyTable(nil)
	}
	if clock == nil {
		clock = ports.SystemClock()
	}
	return &RateLimiterService{windows: windows, policies: policies, clock: clock, logger: logger}
}

// Check consumes one request against the identity's window for the
// endpoint and reports whether the limit is now exceeded.
func (s *RateLimiterService) Check(ctx context.Context, id access.Identity, endpoint string, limit int, window time.Duration) (bool, int) {
	key := ratelimit.NewWindowKey(id.IP, id.PrincipalOrNil(), endpoint)

	exceeded, total, err := s.windows.CheckAndIncrement(ctx, key, limit, window, s.clock.Now())
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": id.IP, "endpoint": endpoint}).WithError(err).Error("rate limiter: window store failed; allowing request (fail-open)")
		}
		return false, 0
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"ip": id.IP, "endpoint": endpoint, "total": total, "limit": limit, "exceeded": exceeded}).Debug("rate limiter window state")
	}
	return exceeded, total
}

// Policy resolves the configured policy for an endpoint name, falling
// back to the default policy for unmapped names.
func (s *RateLimiterService) Policy(endpoint string) ratelimit.Policy {
	return s.policies.Lookup(endpoint)
}

// Reset clears the counting window for a key.
func (s *RateLimiterService) Reset(ctx context.Context, id access.Identity, endpoint string) (int64, error) {
	key := ratelimit.NewWindowKey(id.IP, id.PrincipalOrNil(), endpoint)
	deleted, err := s.windows.Reset(ctx, key)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": id.IP, "endpoint": endpoint}).WithError(err).Error("rate limiter: failed to reset window")
		}
		return 0, err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"ip": id.IP, "endpoint": endpoint, "deleted": deleted}).Info("rate limit window reset")
	}
	return deleted, nil
}
