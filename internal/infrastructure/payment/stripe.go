package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/cyco/cyco-engine/internal/core/domain"
	"github.com/cyco/cyco-engine/internal/core/ports"
)

// intentCreator is the slice of the Stripe client the processor needs.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// BreakerSettings tunes the circuit breaker around the processor.
type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MinRequests uint32
	FailRatio   float64
}

// DefaultBreakerSettings trips after at least 3 requests with a 60% failure
// ratio and probes again after 30s.
var DefaultBreakerSettings = BreakerSettings{
	MaxRequests: 1,
	Interval:    time.Minute,
	Timeout:     30 * time.Second,
	MinRequests: 3,
	FailRatio:   0.6,
}

// StripeProcessor creates Stripe payment intents behind a circuit breaker.
// Each call makes exactly one request to Stripe.
type StripeProcessor struct {
	intents intentCreator
	cb      *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewStripeProcessor builds a processor using secretKey.
func NewStripeProcessor(secretKey string, settings BreakerSettings, log zerolog.Logger) *StripeProcessor {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return newProcessor(sc.PaymentIntents, settings, log)
}

func newProcessor(intents intentCreator, settings BreakerSettings, log zerolog.Logger) *StripeProcessor {
	p := &StripeProcessor{intents: intents, log: log}
	p.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= settings.MinRequests && failureRatio >= settings.FailRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return p
}

// CreatePaymentIntent asks Stripe for an intent with automatic payment
// methods. An open circuit yields domain.ErrProcessorOpen.
func (p *StripeProcessor) CreatePaymentIntent(ctx context.Context, req ports.PaymentIntentRequest) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	res, err := p.cb.Execute(func() (interface{}, error) {
		return p.intents.New(params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, domain.ErrProcessorOpen
		}
		if isClientError(err) {
			return nil, domain.NewError(domain.ErrBadRequest, stripeMessage(err))
		}
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}

	pi := res.(*stripe.PaymentIntent)
	return &domain.PaymentIntent{
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// State reports the current breaker state.
func (p *StripeProcessor) State() gobreaker.State {
	return p.cb.State()
}

// isClientError reports whether Stripe rejected the request itself. Those
// do not count against the processor's health.
func isClientError(err error) bool {
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 && se.HTTPStatusCode != 429
	}
	return false
}

func stripeMessage(err error) string {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return "payment request rejected"
}
