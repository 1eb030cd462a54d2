package middleware

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/infrastructure/httpserver/helpers"
)

// PrincipalMiddleware resolves an optional authenticated principal
// from a bearer token. Requests without a token, or with one that does
// not verify, proceed as anonymous; decisions then key on IP alone.
type PrincipalMiddleware struct {
	jwtSecret string
	logger    *logrus.Logger
}

func NewPrincipalMiddleware(jwtSecret string, logger *logrus.Logger) *PrincipalMiddleware {
	return &PrincipalMiddleware{jwtSecret: jwtSecret, logger: logger}
}

// Resolve extracts the principal id and role from a valid token and
// stores them in the request context.
func (m *PrincipalMiddleware) Resolve() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			tokenString, err := helpers.GetJWTTokenFromContext(c)
			if err != nil {
				return next(c)
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(m.jwtSecret), nil
			})
			if err != nil || !token.Valid {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path}).WithError(err).Debug("bearer token rejected; continuing as anonymous")
				}
				return next(c)
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				return next(c)
			}
			principalID, err := uuid.Parse(sub)
			if err != nil {
				return next(c)
			}

			helpers.SetPrincipalID(c, principalID)
			if role, ok := claims["role"].(string); ok {
				helpers.SetPrincipalRole(c, role)
			}

			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{"principal_id": principalID}).Debug("principal resolved from token")
			}
			return next(c)
		}
	}
}
