package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

type stubResolver struct {
	roles map[string]string
	err   error
	calls int
}

func (r *stubResolver) RoleOf(_ context.Context, email string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	role, ok := r.roles[email]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return role, nil
}

func contextWithIdentity(id *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPatch, "/", nil), rec)
	if id != nil {
		c.Set(IdentityKey, id)
	}
	return c, rec
}

func TestRequireAdmin_Allows(t *testing.T) {
	resolver := &stubResolver{roles: map[string]string{"admin@x.com": domain.RoleAdmin}}
	c, rec := contextWithIdentity(&domain.Identity{Email: "admin@x.com"})

	called := false
	handler := RequireAdmin(resolver)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAdmin_Forbids(t *testing.T) {
	resolver := &stubResolver{roles: map[string]string{"u@x.com": domain.RoleUser}}

	for _, email := range []string{"u@x.com", "ghost@x.com"} {
		c, _ := contextWithIdentity(&domain.Identity{Email: email})
		handler := RequireAdmin(resolver)(func(c echo.Context) error {
			t.Fatalf("should not reach next handler")
			return nil
		})

		if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", email, err)
		}
	}
}

func TestRequireAdmin_IgnoresTokenRole(t *testing.T) {
	resolver := &stubResolver{roles: map[string]string{"u@x.com": domain.RoleUser}}
	c, _ := contextWithIdentity(&domain.Identity{Email: "u@x.com", Role: domain.RoleAdmin})

	handler := RequireAdmin(resolver)(func(c echo.Context) error {
		t.Fatalf("token role must not grant access")
		return nil
	})
	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireAdmin_ReResolvesEveryRequest(t *testing.T) {
	resolver := &stubResolver{roles: map[string]string{"a@x.com": domain.RoleAdmin}}
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	mw := RequireAdmin(resolver)(next)
	id := &domain.Identity{Email: "a@x.com", Role: domain.RoleAdmin}

	c, _ := contextWithIdentity(id)
	if err := mw(c); err != nil {
		t.Fatalf("expected admin allowed, got %v", err)
	}

	// Demoted while the token is still valid.
	resolver.roles["a@x.com"] = domain.RoleUser

	c, _ = contextWithIdentity(id)
	if err := mw(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden after demotion, got %v", err)
	}
	if resolver.calls != 2 {
		t.Fatalf("expected role lookup per request, got %d", resolver.calls)
	}
}

func TestRequireAdmin_MissingIdentity(t *testing.T) {
	c, _ := contextWithIdentity(nil)
	handler := RequireAdmin(&stubResolver{})(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRequireAdmin_StoreFailure(t *testing.T) {
	resolver := &stubResolver{err: errors.New("db down")}
	c, _ := contextWithIdentity(&domain.Identity{Email: "a@x.com"})
	handler := RequireAdmin(resolver)(func(c echo.Context) error { return nil })

	err := handler(c)
	if err == nil || errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
