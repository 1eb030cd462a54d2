package helpers

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ctxKey string

const (
	keyPrincipalID   ctxKey = "principal_id"
	keyPrincipalRole ctxKey = "principal_role"
)

func SetPrincipalID(c echo.Context, id uuid.UUID) { c.Set(string(keyPrincipalID), id) }
func GetPrincipalIDRaw(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(string(keyPrincipalID))
	id, ok := v.(uuid.UUID)
	return id, ok
}

func SetPrincipalRole(c echo.Context, role string) { c.Set(string(keyPrincipalRole), role) }
func GetPrincipalRoleRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyPrincipalRole))
	r, ok := v.(string)
	return r, ok
}
