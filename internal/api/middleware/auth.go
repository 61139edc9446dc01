package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cyco/cyco-engine/internal/api/metrics"
	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

// IdentityKey is the echo context key holding the verified *domain.Identity.
const IdentityKey = "identity"

// Authenticate verifies the bearer token and injects the caller identity
// into the context. Any failure is reported as domain.ErrUnauthorized.
func Authenticate(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.AuthDecisionsTotal.WithLabelValues("authenticate", "deny").Inc()
				return domain.ErrUnauthorized
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AuthDecisionsTotal.WithLabelValues("authenticate", "deny").Inc()
				return domain.ErrUnauthorized
			}

			identity, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.AuthDecisionsTotal.WithLabelValues("authenticate", "deny").Inc()
				return domain.ErrUnauthorized
			}

			metrics.AuthDecisionsTotal.WithLabelValues("authenticate", "allow").Inc()
			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity injected by Authenticate.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(*domain.Identity)
	return id, ok && id != nil
}
