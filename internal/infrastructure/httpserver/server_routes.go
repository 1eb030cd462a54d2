package httpserver

import (
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
)

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	// The administrative surface is itself guarded by the engine, so
	// an abusive admin client hits the same quotas it inspects. The
	// guard runs before the role check so anonymous hammering is
	// counted (and eventually escalated) rather than just rejected.
	admin := api.Group("/admin",
		s.middleware.Guard.Protect(ratelimit.EndpointAPISearch),
		s.middleware.Admin.RequireAdmin(),
	)

	admin.GET("/rate-limits", s.getRateWindows)
	admin.DELETE("/rate-limits", s.resetRateLimit)

	admin.GET("/blacklist", s.getBlacklist)
	admin.POST("/blacklist", s.addToBlacklist)

	admin.GET("/whitelist", s.getWhitelist)
	admin.POST("/whitelist", s.addToWhitelist)

	admin.DELETE("/lists", s.removeFromLists)

	admin.GET("/events", s.getDecisionEvents)
}
