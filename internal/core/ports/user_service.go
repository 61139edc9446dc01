package ports

import (
	"context"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	PhotoURL string
}

// RoleResolver looks up the current persisted role of a user.
type RoleResolver interface {
	RoleOf(ctx context.Context, email string) (string, error)
}

// UserService covers account registration and the user-scoped mutations.
type UserService interface {
	RoleResolver
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Get(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	IsAdmin(ctx context.Context, caller domain.Identity, email string) (bool, error)
	PromoteToAdmin(ctx context.Context, id string) (UpdateOutcome, error)
	AddToWishlist(ctx context.Context, email string, movie domain.MovieRef) error
}
