package domain

import "time"

const DefaultCurrency = "usd"

// PaymentIntent is the processor's answer to an intent request. Only the
// client secret leaves the gateway.
type PaymentIntent struct {
	ClientSecret string
	AmountMinor  int64
	Currency     string
}

// IntentReceipt is what the gateway remembers about an intent created under
// an idempotency key: the secret to replay and the parameters it was made for.
type IntentReceipt struct {
	ClientSecret string `json:"clientSecret"`
	AmountMinor  int64  `json:"amountMinor"`
	Currency     string `json:"currency"`
}

// Matches reports whether a new request asks for the same charge.
func (r IntentReceipt) Matches(amountMinor int64, currency string) bool {
	return r.AmountMinor == amountMinor && r.Currency == currency
}

// PaymentRecord is an append-only record of a completed client-side payment.
type PaymentRecord struct {
	ID            string         `json:"_id,omitempty"`
	Email         string         `json:"email,omitempty"`
	TransactionID string         `json:"transactionId,omitempty"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}
