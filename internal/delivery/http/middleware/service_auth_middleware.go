package middleware

import (
	"strings"

	"atelier/internal/delivery/http/response"
	"atelier/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// ServiceAuthMiddleware guards the internal surface. Callers are other
// services (the cleanup scheduler, test harnesses), never end users, so the
// only accepted credential is a signed service token.
type ServiceAuthMiddleware struct {
	tokens service.ServiceTokenService
}

// NewServiceAuthMiddleware is the constructor for ServiceAuthMiddleware.
func NewServiceAuthMiddleware(tokens service.ServiceTokenService) *ServiceAuthMiddleware {
	return &ServiceAuthMiddleware{tokens: tokens}
}

// Authenticate validates the bearer token and records the calling subject
// on the echo context.
func (m *ServiceAuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "UNAUTHORIZED", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "UNAUTHORIZED", "Invalid token format, must be Bearer token")
		}

		subject, err := m.tokens.ValidateServiceToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "UNAUTHORIZED", "Invalid or expired service token")
		}

		c.Set("serviceSubject", subject)

		return next(c)
	}
}
