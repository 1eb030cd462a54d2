package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
	"github.com/gatewarden/gatewarden/internal/infrastructure/httpserver/helpers"
)

func (s *Server) addToBlacklist(c echo.Context) error {
	var req access.UpsertBlacklistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CreatedBy == "" {
		if id, ok := helpers.GetPrincipalIDRaw(c); ok {
			req.CreatedBy = id.String()
		}
	}

	entry, err := s.listAdmin.AddToBlacklist(c.Request().Context(), &req)
	if err != nil {
		return helpers.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (s *Server) addToWhitelist(c echo.Context) error {
	var req access.UpsertWhitelistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CreatedBy == "" {
		if id, ok := helpers.GetPrincipalIDRaw(c); ok {
			req.CreatedBy = id.String()
		}
	}

	entry, err := s.listAdmin.AddToWhitelist(c.Request().Context(), &req)
	if err != nil {
		return helpers.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// targetQuery resolves the ip/principal_id query parameters shared by
// the delete endpoints.
func targetQuery(c echo.Context) (string, *uuid.UUID, error) {
	ip := c.QueryParam("ip_address")
	var principal *uuid.UUID
	if raw := c.QueryParam("principal_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return "", nil, echo.NewHTTPError(http.StatusBadRequest, "invalid principal_id")
		}
		principal = &id
	}
	if ip == "" && principal == nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "either ip_address or principal_id is required")
	}
	return ip, principal, nil
}

func (s *Server) removeFromLists(c echo.Context) error {
	ip, principal, err := targetQuery(c)
	if err != nil {
		return err
	}

	id := access.Identity{IP: ip, Principal: principal}
	affected, err := s.listAdmin.RemoveFromLists(c.Request().Context(), id)
	if err != nil {
		return helpers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"deactivated": affected})
}

func (s *Server) resetRateLimit(c echo.Context) error {
	ip, principal, err := targetQuery(c)
	if err != nil {
		return err
	}
	endpoint := c.QueryParam("endpoint")
	if endpoint == "" {
		endpoint = ratelimit.EndpointAPIGeneral
	}

	id := access.Identity{IP: ip, Principal: principal}
	deleted, err := s.limiter.Reset(c.Request().Context(), id, endpoint)
	if err != nil {
		return helpers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"deleted": deleted})
}
