package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/ports"
	"github.com/gatewarden/gatewarden/internal/infrastructure/httpserver/helpers"
)

// GuardMiddleware runs the decision engine for a named endpoint policy
// and maps the verdict to a response status.
type GuardMiddleware struct {
	engine         ports.DecisionEngine
	decisionsTotal *prometheus.CounterVec
	logger         *logrus.Logger
}

func NewGuardMiddleware(engine ports.DecisionEngine, decisionsTotal *prometheus.CounterVec, logger *logrus.Logger) *GuardMiddleware {
	return &GuardMiddleware{engine: engine, decisionsTotal: decisionsTotal, logger: logger}
}

// Protect guards a route group under the given endpoint policy name.
func (m *GuardMiddleware) Protect(endpoint string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := helpers.GetIdentityFromContext(c)
			verdict := m.engine.Decide(c.Request().Context(), id, endpoint)

			if m.decisionsTotal != nil {
				m.decisionsTotal.WithLabelValues(endpoint, string(verdict)).Inc()
			}

			switch verdict {
			case access.VerdictBlacklisted:
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			case access.VerdictRateLimited:
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
