package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

// PaymentRepository appends payment records. Records are never updated.
type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(collectionPayments)}
}

type mongoPayment struct {
	Email         string         `bson:"email,omitempty"`
	TransactionID string         `bson:"transactionId,omitempty"`
	Amount        float64        `bson:"amount"`
	Currency      string         `bson:"currency"`
	Metadata      map[string]any `bson:"metadata,omitempty"`
	CreatedAt     time.Time      `bson:"createdAt"`
}

func (r *PaymentRepository) Insert(ctx context.Context, rec *domain.PaymentRecord) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoPayment{
		Email:         rec.Email,
		TransactionID: rec.TransactionID,
		Amount:        rec.Amount,
		Currency:      rec.Currency,
		Metadata:      rec.Metadata,
		CreatedAt:     rec.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("insert payment: %w", err)
	}
	return insertedID(res.InsertedID), nil
}
