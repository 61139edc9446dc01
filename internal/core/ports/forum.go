package ports

import (
	"context"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

// ForumRepository defines persistence for forum queries.
type ForumRepository interface {
	Create(ctx context.Context, q *domain.ForumQuery) (string, error)
	List(ctx context.Context) ([]*domain.ForumQuery, error)
	// SetViews sets the absolute view count. A malformed id yields
	// domain.ErrInvalidID.
	SetViews(ctx context.Context, id string, views int64) (UpdateOutcome, error)
}

// PostQueryInput carries a new forum query.
type PostQueryInput struct {
	AuthorEmail string
	AuthorName  string
	Title       string
	Body        string
}

// ForumService covers forum posting and view counters.
type ForumService interface {
	Post(ctx context.Context, in PostQueryInput) (string, error)
	List(ctx context.Context) ([]*domain.ForumQuery, error)
	// SetViews reports whether a record was matched and modified. It never
	// fails for an unknown id.
	SetViews(ctx context.Context, id string, views int64) (bool, error)
}
