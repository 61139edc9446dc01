package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

const intentTTL = 24 * time.Hour

// IntentCache remembers payment intents by idempotency key so a retried
// checkout replays the original intent. The stored value carries the amount
// and currency, so a reused key can be checked against the new request.
// Key format: payment-intent:<idempotency_key>
type IntentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIntentCache creates an IntentCache wrapping the given Redis client.
func NewIntentCache(client *redis.Client) *IntentCache {
	return &IntentCache{client: client, ttl: intentTTL}
}

// Lookup returns the receipt cached for key, if any.
func (c *IntentCache) Lookup(ctx context.Context, key string) (domain.IntentReceipt, bool, error) {
	raw, err := c.client.Get(ctx, intentKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.IntentReceipt{}, false, nil
	}
	if err != nil {
		return domain.IntentReceipt{}, false, fmt.Errorf("intent cache lookup: %w", err)
	}

	receipt, err := decodeReceipt(raw)
	if err != nil {
		return domain.IntentReceipt{}, false, fmt.Errorf("intent cache lookup %s: %w", key, err)
	}
	return receipt, true, nil
}

// Remember stores receipt for key. An existing entry is kept so that the
// first intent created for a key wins.
func (c *IntentCache) Remember(ctx context.Context, key string, receipt domain.IntentReceipt) error {
	raw, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("intent cache encode: %w", err)
	}
	if err := c.client.SetNX(ctx, intentKey(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("intent cache remember: %w", err)
	}
	return nil
}

func decodeReceipt(raw []byte) (domain.IntentReceipt, error) {
	var receipt domain.IntentReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return domain.IntentReceipt{}, fmt.Errorf("decode receipt: %w", err)
	}
	if receipt.ClientSecret == "" || receipt.Currency == "" {
		return domain.IntentReceipt{}, errors.New("decode receipt: incomplete entry")
	}
	return receipt, nil
}

func intentKey(key string) string {
	return "payment-intent:" + key
}
