package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cyco/cyco-engine/internal/api/metrics"
	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

type paymentService struct {
	processor ports.PaymentProcessor
	repo      ports.PaymentRepository
	cache     ports.IntentCache // optional
	log       zerolog.Logger
}

// NewPaymentService returns a PaymentService. cache may be nil, in which case
// idempotency keys are only forwarded to the processor.
func NewPaymentService(
	processor ports.PaymentProcessor,
	repo ports.PaymentRepository,
	cache ports.IntentCache,
	log zerolog.Logger,
) ports.PaymentService {
	return &paymentService{
		processor: processor,
		repo:      repo,
		cache:     cache,
		log:       log,
	}
}

// CreateIntent converts price to minor units and asks the processor for an
// intent. Only the client secret is returned. A key already used for a
// different amount or currency yields domain.ErrIdempotencyKeyUsed.
func (s *paymentService) CreateIntent(ctx context.Context, in ports.CreateIntentInput) (string, error) {
	if in.Price <= 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return "", domain.NewError(domain.ErrBadRequest, "price must be greater than 0")
	}
	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	amountMinor := toMinorUnits(in.Price)

	// 1. Replay a previously created intent for the same key and charge.
	if in.IdempotencyKey != "" && s.cache != nil {
		receipt, ok, err := s.cache.Lookup(ctx, in.IdempotencyKey)
		if err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("intent cache lookup failed, calling processor")
		} else if ok {
			if !receipt.Matches(amountMinor, currency) {
				metrics.PaymentIntentsTotal.WithLabelValues("key_reused").Inc()
				s.log.Warn().
					Str("idempotency_key", in.IdempotencyKey).
					Int64("cached_amount_minor", receipt.AmountMinor).
					Int64("amount_minor", amountMinor).
					Msg("idempotency key reused with different parameters")
				return "", domain.ErrIdempotencyKeyUsed
			}
			metrics.PaymentIntentsTotal.WithLabelValues("replayed").Inc()
			s.log.Info().Str("idempotency_key", in.IdempotencyKey).Msg("idempotent intent replay")
			return receipt.ClientSecret, nil
		}
	}

	// 2. Single processor call, never retried here.
	start := time.Now()
	intent, err := s.processor.CreatePaymentIntent(ctx, ports.PaymentIntentRequest{
		AmountMinor:    amountMinor,
		Currency:       currency,
		IdempotencyKey: in.IdempotencyKey,
	})
	metrics.PaymentIntentDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			metrics.PaymentIntentsTotal.WithLabelValues("unavailable").Inc()
		} else {
			metrics.PaymentIntentsTotal.WithLabelValues("error").Inc()
		}
		return "", err
	}

	// 3. Remember the secret with the charge it belongs to (non-fatal on failure).
	if in.IdempotencyKey != "" && s.cache != nil {
		receipt := domain.IntentReceipt{
			ClientSecret: intent.ClientSecret,
			AmountMinor:  amountMinor,
			Currency:     currency,
		}
		if err := s.cache.Remember(ctx, in.IdempotencyKey, receipt); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to cache intent")
		}
	}

	metrics.PaymentIntentsTotal.WithLabelValues("created").Inc()
	s.log.Info().
		Int64("amount_minor", intent.AmountMinor).
		Str("currency", intent.Currency).
		Msg("payment intent created")

	return intent.ClientSecret, nil
}

// RecordPayment appends the record as given. It is not reconciled against
// the processor.
func (s *paymentService) RecordPayment(ctx context.Context, rec *domain.PaymentRecord) (string, error) {
	if rec == nil {
		return "", domain.NewError(domain.ErrBadRequest, "payment is required")
	}
	if rec.Currency == "" {
		rec.Currency = domain.DefaultCurrency
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return s.repo.Insert(ctx, rec)
}

// toMinorUnits converts major currency units to cents, rounding away float error.
func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
