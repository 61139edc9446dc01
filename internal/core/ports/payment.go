package ports

import (
	"context"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

// PaymentIntentRequest is what the gateway asks of the processor.
type PaymentIntentRequest struct {
	AmountMinor    int64
	Currency       string
	IdempotencyKey string // optional
}

// PaymentProcessor is the external payment provider.
type PaymentProcessor interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*domain.PaymentIntent, error)
}

// PaymentRepository appends payment records.
type PaymentRepository interface {
	Insert(ctx context.Context, rec *domain.PaymentRecord) (string, error)
}

// IntentCache remembers created intents by idempotency key.
type IntentCache interface {
	Lookup(ctx context.Context, key string) (domain.IntentReceipt, bool, error)
	Remember(ctx context.Context, key string, receipt domain.IntentReceipt) error
}

// CreateIntentInput carries a payment intent request from the transport layer.
type CreateIntentInput struct {
	Price          float64 // major units
	Currency       string  // defaults to usd
	IdempotencyKey string
}

// PaymentService creates intents and records completed payments.
type PaymentService interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (string, error)
	RecordPayment(ctx context.Context, rec *domain.PaymentRecord) (string, error)
}
