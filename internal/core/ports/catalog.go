package ports

import (
	"context"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

// CatalogRepository gives pass-through access to the movie and series collections.
type CatalogRepository interface {
	ListMovies(ctx context.Context) ([]domain.Document, error)
	InsertMovie(ctx context.Context, doc domain.Document) (string, error)
	ListSeries(ctx context.Context) ([]domain.Document, error)
}

// CatalogService exposes catalog reads and movie creation.
type CatalogService interface {
	ListMovies(ctx context.Context) ([]domain.Document, error)
	CreateMovie(ctx context.Context, doc domain.Document) (string, error)
	ListSeries(ctx context.Context) ([]domain.Document, error)
}
