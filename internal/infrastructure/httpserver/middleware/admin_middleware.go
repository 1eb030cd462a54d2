package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatewarden/gatewarden/internal/infrastructure/httpserver/helpers"
)

const roleAdmin = "admin"

// AdminMiddleware restricts the administrative surface to principals
// carrying the admin role.
type AdminMiddleware struct{}

func NewAdminMiddleware() *AdminMiddleware {
	return &AdminMiddleware{}
}

func (m *AdminMiddleware) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := helpers.GetPrincipalIDRaw(c); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			role, ok := helpers.GetPrincipalRoleRaw(c)
			if !ok || role != roleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}
			return next(c)
		}
	}
}
