package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

// CatalogService is a pass-through over the movie and series collections.
type CatalogService struct {
	repo   ports.CatalogRepository
	logger zerolog.Logger
}

func NewCatalogService(repo ports.CatalogRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

func (s *CatalogService) ListMovies(ctx context.Context) ([]domain.Document, error) {
	return s.repo.ListMovies(ctx)
}

func (s *CatalogService) CreateMovie(ctx context.Context, doc domain.Document) (string, error) {
	if len(doc) == 0 {
		return "", domain.NewError(domain.ErrBadRequest, "movie document is empty")
	}

	id, err := s.repo.InsertMovie(ctx, doc)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save movie")
		return "", err
	}

	s.logger.Info().Str("movie_id", id).Msg("movie saved")
	return id, nil
}

func (s *CatalogService) ListSeries(ctx context.Context) ([]domain.Document, error) {
	return s.repo.ListSeries(ctx)
}
