package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cyco/cyco-engine/internal/api/metrics"
	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

// UserService implements registration, role checks and the user-scoped
// idempotent mutations (wishlist set-add, admin promotion).
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Register creates a user with role "user" and an empty wishlist. Email
// uniqueness is enforced by the repository at write time.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.NewError(domain.ErrBadRequest, "email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		PhotoURL:     in.PhotoURL,
		Wishlist:     []domain.MovieRef{},
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrUserExists) {
			result = "duplicate"
		}
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.logger.Info().Str("email", email).Msg("user registered")
	return created, nil
}

func (s *UserService) Get(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// RoleOf returns the persisted role for email. Authorization decisions use
// this rather than any role carried in a token.
func (s *UserService) RoleOf(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// IsAdmin answers an admin check for email on behalf of caller. A caller
// asking about another identity gets false without a lookup.
func (s *UserService) IsAdmin(ctx context.Context, caller domain.Identity, email string) (bool, error) {
	if caller.Email != email {
		return false, nil
	}

	role, err := s.RoleOf(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return role == domain.RoleAdmin, nil
}

// PromoteToAdmin unconditionally sets the role to admin. Repeated calls
// converge on the same state.
func (s *UserService) PromoteToAdmin(ctx context.Context, id string) (ports.UpdateOutcome, error) {
	out, err := s.repo.SetRole(ctx, id, domain.RoleAdmin)
	if err != nil {
		return ports.UpdateOutcome{}, err
	}

	s.logger.Info().
		Str("user_id", id).
		Int64("matched", out.MatchedCount).
		Int64("modified", out.ModifiedCount).
		Msg("admin promotion applied")
	return out, nil
}

// AddToWishlist adds movie to the user's wishlist at most once. The
// conditional write decides the outcome; the follow-up read only tells a
// missing user apart from a duplicate.
func (s *UserService) AddToWishlist(ctx context.Context, email string, movie domain.MovieRef) error {
	if email == "" {
		return domain.NewError(domain.ErrBadRequest, "Invalid user data")
	}
	if movie.ID == "" {
		return domain.NewError(domain.ErrBadRequest, "Invalid movie data")
	}

	out, err := s.repo.AddToWishlist(ctx, email, movie)
	if err != nil {
		metrics.WishlistAddsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("add to wishlist: %w", err)
	}
	if out.MatchedCount > 0 {
		metrics.WishlistAddsTotal.WithLabelValues("added").Inc()
		s.logger.Debug().Str("email", email).Str("movie_id", movie.ID).Msg("movie added to wishlist")
		return nil
	}

	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.WishlistAddsTotal.WithLabelValues("user_not_found").Inc()
			return err
		}
		metrics.WishlistAddsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("add to wishlist: %w", err)
	}

	metrics.WishlistAddsTotal.WithLabelValues("duplicate").Inc()
	return domain.ErrAlreadyInWishlist
}
