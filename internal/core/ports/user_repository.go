package ports

import (
	"context"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

// UpdateOutcome mirrors the store's answer to a single-document update.
type UpdateOutcome struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// UserRepository defines persistence for user records.
type UserRepository interface {
	// Create inserts a new user. Implementations enforce email uniqueness at
	// write time and return domain.ErrUserExists on a duplicate.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// SetRole overwrites the role of the user with the given id.
	SetRole(ctx context.Context, id, role string) (UpdateOutcome, error)
	// AddToWishlist adds movie to the wishlist of the user with the given email
	// only if no entry with the same movie id is present. The membership check
	// and the write are a single storage operation; MatchedCount is 0 when the
	// user is missing or the movie is already listed.
	AddToWishlist(ctx context.Context, email string, movie domain.MovieRef) (UpdateOutcome, error)
}
