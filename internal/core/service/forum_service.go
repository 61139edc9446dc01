package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/cyco/cyco-engine/internal/api/metrics"
	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

type ForumService struct {
	repo   ports.ForumRepository
	logger zerolog.Logger
}

func NewForumService(repo ports.ForumRepository, logger zerolog.Logger) *ForumService {
	return &ForumService{repo: repo, logger: logger}
}

// Post stores a new query with zero views.
func (s *ForumService) Post(ctx context.Context, in ports.PostQueryInput) (string, error) {
	if in.AuthorEmail == "" || in.Body == "" {
		return "", domain.NewError(domain.ErrBadRequest, "authorEmail and body are required")
	}

	id, err := s.repo.Create(ctx, &domain.ForumQuery{
		AuthorEmail: in.AuthorEmail,
		AuthorName:  in.AuthorName,
		Title:       in.Title,
		Body:        in.Body,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *ForumService) List(ctx context.Context) ([]*domain.ForumQuery, error) {
	return s.repo.List(ctx)
}

// SetViews writes the absolute view count (last write wins). Unknown and
// malformed ids report false instead of failing.
func (s *ForumService) SetViews(ctx context.Context, id string, views int64) (bool, error) {
	if views < 0 {
		return false, domain.NewError(domain.ErrBadRequest, "views must be at least 0")
	}

	out, err := s.repo.SetViews(ctx, id, views)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidID) {
			metrics.ForumViewUpdatesTotal.WithLabelValues("false").Inc()
			return false, nil
		}
		return false, err
	}

	ok := out.ModifiedCount == 1
	metrics.ForumViewUpdatesTotal.WithLabelValues(strconv.FormatBool(ok)).Inc()
	s.logger.Debug().Str("query_id", id).Int64("views", views).Bool("success", ok).Msg("forum views updated")
	return ok, nil
}
