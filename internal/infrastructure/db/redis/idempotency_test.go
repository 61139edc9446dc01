package redis

import (
	"encoding/json"
	"testing"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

func TestDecodeReceipt_RoundTrip(t *testing.T) {
	want := domain.IntentReceipt{ClientSecret: "pi_1_secret", AmountMinor: 1999, Currency: "usd"}
	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := decodeReceipt(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("want %+v, got %+v", want, got)
	}
	if !got.Matches(1999, "usd") || got.Matches(99900, "usd") || got.Matches(1999, "eur") {
		t.Fatalf("Matches disagrees with the stored charge: %+v", got)
	}
}

func TestDecodeReceipt_RejectsBareSecretsAndPartialEntries(t *testing.T) {
	for name, raw := range map[string]string{
		"bare secret":    "pi_1_secret",
		"no currency":    `{"clientSecret":"pi_1_secret","amountMinor":1000}`,
		"no secret":      `{"amountMinor":1000,"currency":"usd"}`,
		"malformed json": `{"clientSecret":`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeReceipt([]byte(raw)); err == nil {
				t.Fatalf("expected an error for %q", raw)
			}
		})
	}
}
