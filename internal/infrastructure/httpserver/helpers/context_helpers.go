package helpers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
)

// GetIdentityFromContext builds the caller's identity from the request
// IP and the principal resolved by the middleware, if any.
func GetIdentityFromContext(c echo.Context) access.Identity {
	if id, ok := GetPrincipalIDRaw(c); ok {
		return access.NewPrincipalIdentity(c.RealIP(), id)
	}
	return access.NewIdentity(c.RealIP())
}

func GetJWTTokenFromContext(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "empty token")
	}
	return token, nil
}

// HTTPError maps domain errors to echo errors with appropriate status codes.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, access.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, access.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
