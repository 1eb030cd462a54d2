package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
	"github.com/gatewarden/gatewarden/internal/core/ports"
)

type AuditService struct {
	repo   ports.EventRepository
	clock  ports.Clock
	logger *logrus.Logger
}

func NewAuditService(repo ports.EventRepository, clock ports.Clock, logger *logrus.Logger) ports.AuditService {
	if clock == nil {
		clock = ports.SystemClock()
	}
	return &AuditService{repo: repo, clock: clock, logger: logger}
}

func (s *AuditService) RecordEvent(ctx context.Context, req *audit.RecordEventRequest) error {
	event := &audit.DecisionEvent{
		IPAddress:   req.Identity.IP,
		PrincipalID: req.Identity.PrincipalOrNil(),
		Endpoint:    req.Endpoint,
		Kind:        req.Kind,
		CreatedAt:   s.clock.Now(),
	}
	if req.Detail != "" {
		detail := req.Detail
		event.Detail = &detail
	}

	err := s.repo.Create(ctx, event)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": req.Identity.IP, "endpoint": req.Endpoint, "kind": req.Kind}).WithError(err).Error("failed to persist decision event")
		}
		return err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"ip": req.Identity.IP, "endpoint": req.Endpoint, "kind": req.Kind}).Debug("decision event persisted")
	}
	return nil
}

func (s *AuditService) GetEvents(ctx context.Context, filter *audit.EventFilter) ([]*audit.DecisionEvent, int, error) {
	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
