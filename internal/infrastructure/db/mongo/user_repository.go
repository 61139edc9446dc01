package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Username     string             `bson:"name"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	PhotoURL     string             `bson:"photoUrl,omitempty"`
	Wishlist     []domain.MovieRef  `bson:"wishlist"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (mu *mongoUser) toDomain() *domain.User {
	wishlist := mu.Wishlist
	if wishlist == nil {
		wishlist = []domain.MovieRef{}
	}
	return &domain.User{
		ID:           mu.ID.Hex(),
		Email:        mu.Email,
		Username:     mu.Username,
		PasswordHash: mu.PasswordHash,
		Role:         mu.Role,
		PhotoURL:     mu.PhotoURL,
		Wishlist:     wishlist,
		CreatedAt:    mu.CreatedAt,
	}
}

// EnsureIndexes creates the unique email index that backs duplicate
// registration detection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	wishlist := user.Wishlist
	if wishlist == nil {
		wishlist = []domain.MovieRef{}
	}
	doc := mongoUser{
		Email:        user.Email,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		PhotoURL:     user.PhotoURL,
		Wishlist:     wishlist,
		CreatedAt:    user.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	users := make([]*domain.User, 0)
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetRole unconditionally sets the role of the user with the given id.
func (r *UserRepository) SetRole(ctx context.Context, id, role string) (ports.UpdateOutcome, error) {
	oid, err := objectID(id)
	if err != nil {
		return ports.UpdateOutcome{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"role": role}},
	)
	if err != nil {
		return ports.UpdateOutcome{}, fmt.Errorf("set role: %w", err)
	}
	return ports.UpdateOutcome{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

// AddToWishlist appends movie only when no entry with the same _id exists.
// The membership test lives in the filter so check and write are one
// document-level atomic operation.
func (r *UserRepository) AddToWishlist(ctx context.Context, email string, movie domain.MovieRef) (ports.UpdateOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"email":        email,
		"wishlist._id": bson.M{"$ne": movie.ID},
	}
	update := bson.M{"$addToSet": bson.M{"wishlist": movie}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return ports.UpdateOutcome{}, fmt.Errorf("add to wishlist: %w", err)
	}
	return ports.UpdateOutcome{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
