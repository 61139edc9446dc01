package middleware

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/cyco/cyco-engine/internal/api/metrics"
	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

// RequireAdmin admits only callers whose stored role is admin. It must run
// after Authenticate. The role is read from the user store on every request,
// so a demotion takes effect immediately even for unexpired tokens.
func RequireAdmin(resolver ports.RoleResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				metrics.AuthDecisionsTotal.WithLabelValues("require_admin", "deny").Inc()
				return domain.ErrUnauthorized
			}

			role, err := resolver.RoleOf(c.Request().Context(), identity.Email)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.AuthDecisionsTotal.WithLabelValues("require_admin", "deny").Inc()
					return domain.ErrForbidden
				}
				metrics.AuthDecisionsTotal.WithLabelValues("require_admin", "error").Inc()
				return fmt.Errorf("resolve role: %w", err)
			}

			if role != domain.RoleAdmin {
				metrics.AuthDecisionsTotal.WithLabelValues("require_admin", "deny").Inc()
				return domain.ErrForbidden
			}

			metrics.AuthDecisionsTotal.WithLabelValues("require_admin", "allow").Inc()
			return next(c)
		}
	}
}
