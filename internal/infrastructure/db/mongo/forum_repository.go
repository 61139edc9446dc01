package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

// ForumRepository implements ports.ForumRepository using MongoDB.
type ForumRepository struct {
	col *mongo.Collection
}

// NewForumRepository creates a new ForumRepository.
func NewForumRepository(db *mongo.Database) ports.ForumRepository {
	return &ForumRepository{col: db.Collection(collectionForumQueries)}
}

type mongoForumQuery struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	AuthorEmail string             `bson:"authorEmail"`
	AuthorName  string             `bson:"authorName,omitempty"`
	Title       string             `bson:"title,omitempty"`
	Body        string             `bson:"body"`
	Views       int64              `bson:"views"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (r *ForumRepository) Create(ctx context.Context, q *domain.ForumQuery) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoForumQuery{
		AuthorEmail: q.AuthorEmail,
		AuthorName:  q.AuthorName,
		Title:       q.Title,
		Body:        q.Body,
		Views:       q.Views,
		CreatedAt:   q.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("insert forum query: %w", err)
	}
	return insertedID(res.InsertedID), nil
}

func (r *ForumRepository) List(ctx context.Context) ([]*domain.ForumQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list forum queries: %w", err)
	}

	var docs []mongoForumQuery
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode forum queries: %w", err)
	}

	out := make([]*domain.ForumQuery, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.ForumQuery{
			ID:          d.ID.Hex(),
			AuthorEmail: d.AuthorEmail,
			AuthorName:  d.AuthorName,
			Title:       d.Title,
			Body:        d.Body,
			Views:       d.Views,
			CreatedAt:   d.CreatedAt,
		})
	}
	return out, nil
}

// SetViews overwrites the view counter. A malformed id yields
// domain.ErrInvalidID; an unknown id yields a zero outcome.
func (r *ForumRepository) SetViews(ctx context.Context, id string, views int64) (ports.UpdateOutcome, error) {
	oid, err := objectID(id)
	if err != nil {
		return ports.UpdateOutcome{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"views": views}},
	)
	if err != nil {
		return ports.UpdateOutcome{}, fmt.Errorf("set views: %w", err)
	}
	return ports.UpdateOutcome{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
