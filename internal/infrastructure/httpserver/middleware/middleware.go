package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/ports"
)

// MiddlewareCollection holds all middleware instances
type MiddlewareCollection struct {
	Principal *PrincipalMiddleware
	Admin     *AdminMiddleware
	Guard     *GuardMiddleware
	Logging   *LoggingMiddleware
	Metrics   *MetricsMiddleware
}

// NewMiddlewareCollection creates a new collection of all middleware
func NewMiddlewareCollection(
	engine ports.DecisionEngine,
	logger *logrus.Logger,
	jwtSecret string,
	requestsTotal *prometheus.CounterVec,
	requestDuration *prometheus.HistogramVec,
	decisionsTotal *prometheus.CounterVec,
) *MiddlewareCollection {
	return &MiddlewareCollection{
		Principal: NewPrincipalMiddleware(jwtSecret, logger),
		Admin:     NewAdminMiddleware(),
		Guard:     NewGuardMiddleware(engine, decisionsTotal, logger),
		Logging:   NewLoggingMiddleware(logger),
		Metrics:   NewMetricsMiddleware(requestsTotal, requestDuration),
	}
}
