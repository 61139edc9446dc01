package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

// CatalogRepository reads and writes movie and series documents without
// interpreting their content.
type CatalogRepository struct {
	movies *mongo.Collection
	series *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		movies: db.Collection(collectionMovies),
		series: db.Collection(collectionSeries),
	}
}

func (r *CatalogRepository) ListMovies(ctx context.Context) ([]domain.Document, error) {
	return listDocuments(ctx, r.movies)
}

func (r *CatalogRepository) ListSeries(ctx context.Context) ([]domain.Document, error) {
	return listDocuments(ctx, r.series)
}

// InsertMovie stores doc as given and returns the generated id.
func (r *CatalogRepository) InsertMovie(ctx context.Context, doc domain.Document) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.movies.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return "", fmt.Errorf("insert movie: %w", err)
	}
	return insertedID(res.InsertedID), nil
}

func listDocuments(ctx context.Context, col *mongo.Collection) ([]domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", col.Name(), err)
	}

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", col.Name(), err)
	}

	docs := make([]domain.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, domain.Document(m))
	}
	return docs, nil
}
