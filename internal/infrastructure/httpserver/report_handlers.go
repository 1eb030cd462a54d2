package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
	"github.com/gatewarden/gatewarden/internal/core/ports"
	"github.com/gatewarden/gatewarden/internal/infrastructure/httpserver/helpers"
)

func bindPage(c echo.Context) (ports.PageRequest, error) {
	var page ports.PageRequest
	if err := c.Bind(&page); err != nil {
		return page, echo.NewHTTPError(http.StatusBadRequest, "invalid pagination parameters")
	}
	return page, nil
}

func (s *Server) getRateWindows(c echo.Context) error {
	var filter ratelimit.WindowFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter parameters")
	}
	page, err := bindPage(c)
	if err != nil {
		return err
	}

	windows, pagination, stats, err := s.reports.GetWindows(c.Request().Context(), &filter, page)
	if err != nil {
		return helpers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"windows":    windows,
		"pagination": pagination,
		"statistics": stats,
	})
}

func (s *Server) getBlacklist(c echo.Context) error {
	var filter access.BlacklistFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter parameters")
	}
	page, err := bindPage(c)
	if err != nil {
		return err
	}

	entries, pagination, stats, err := s.reports.GetBlacklist(c.Request().Context(), &filter, page)
	if err != nil {
		return helpers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries":    entries,
		"pagination": pagination,
		"statistics": stats,
	})
}

func (s *Server) getWhitelist(c echo.Context) error {
	var filter access.WhitelistFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter parameters")
	}
	page, err := bindPage(c)
	if err != nil {
		return err
	}

	entries, pagination, stats, err := s.reports.GetWhitelist(c.Request().Context(), &filter, page)
	if err != nil {
		return helpers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries":    entries,
		"pagination": pagination,
		"statistics": stats,
	})
}

func (s *Server) getDecisionEvents(c echo.Context) error {
	var filter audit.EventFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter parameters")
	}
	page, err := bindPage(c)
	if err != nil {
		return err
	}

	events, pagination, err := s.reports.GetEvents(c.Request().Context(), &filter, page)
	if err != nil {
		return helpers.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"events":     events,
		"pagination": pagination,
	})
}
