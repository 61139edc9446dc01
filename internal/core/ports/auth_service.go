package ports

import (
	"context"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

// TokenVerifier validates a bearer token and returns the identity it encodes.
type TokenVerifier interface {
	Verify(token string) (*domain.Identity, error)
}

// AuthService issues session tokens.
type AuthService interface {
	// IssueToken signs a token for an identity claim without checking credentials.
	IssueToken(claim domain.Identity) (string, error)
	// Login checks the password against the stored hash before issuing a token.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
