package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestVerifyAndParseEvent(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_123","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","metadata":{"orderId":"17","artworkId":"4"},"amount_total":2400,"payment_intent":"pi_123"}}}`)
	timestamp := time.Now().Unix()

	header := buildSignatureHeader(secret, payload, timestamp)
	event, err := VerifyAndParseEvent(payload, header, secret)
	if err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}
	if event.Type != EventCheckoutSessionCompleted {
		t.Fatalf("expected type %s, got %s", EventCheckoutSessionCompleted, event.Type)
	}

	session := event.Data.Object
	if session.Metadata["orderId"] != "17" {
		t.Fatalf("expected orderId 17, got %q", session.Metadata["orderId"])
	}
	if session.AmountTotal != 2400 {
		t.Fatalf("expected amount 2400, got %d", session.AmountTotal)
	}
	if session.PaymentIntent != "pi_123" {
		t.Fatalf("expected payment intent pi_123, got %s", session.PaymentIntent)
	}
}

func TestVerifyAndParseEventWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_123","type":"checkout.session.completed","data":{"object":{}}}`)
	header := buildSignatureHeader("whsec_other", payload, time.Now().Unix())

	if _, err := VerifyAndParseEvent(payload, header, "whsec_test"); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyAndParseEventTamperedBody(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_123","type":"checkout.session.completed","data":{"object":{"amount_total":2400}}}`)
	header := buildSignatureHeader(secret, payload, time.Now().Unix())

	tampered := []byte(`{"id":"evt_123","type":"checkout.session.completed","data":{"object":{"amount_total":1}}}`)
	if _, err := VerifyAndParseEvent(tampered, header, secret); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyAndParseEventMalformedHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_123","type":"checkout.session.completed"}`)

	for _, header := range []string{"", "t=123", "v1=deadbeef", "nonsense"} {
		if _, err := VerifyAndParseEvent(payload, header, "whsec_test"); err != ErrInvalidSignature {
			t.Fatalf("header %q: expected ErrInvalidSignature, got %v", header, err)
		}
	}
}

func TestVerifyAndParseEventSecondSignature(t *testing.T) {
	// Stripe sends an extra v1 entry while a secret roll is in progress.
	secret := "whsec_new"
	payload := []byte(`{"id":"evt_123","type":"checkout.session.completed","data":{"object":{}}}`)
	timestamp := time.Now().Unix()

	stale := buildSignatureHeader("whsec_old", payload, timestamp)
	good := buildSignatureHeader(secret, payload, timestamp)
	header := fmt.Sprintf("%s,%s", stale, good[len(fmt.Sprintf("t=%d,", timestamp)):])

	if _, err := VerifyAndParseEvent(payload, header, secret); err != nil {
		t.Fatalf("expected rolled secret to verify, got %v", err)
	}
}

func TestParseEvent(t *testing.T) {
	body, err := json.Marshal(map[string]interface{}{
		"id":   "evt_9",
		"type": "charge.refunded",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":              "cs_test_9",
				"amount_subtotal": 900,
				"customer_email":  "buyer@example.com",
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	event, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.Type != "charge.refunded" {
		t.Fatalf("expected type charge.refunded, got %s", event.Type)
	}
	if event.Data.Object.AmountSubtotal != 900 {
		t.Fatalf("expected amount subtotal 900, got %d", event.Data.Object.AmountSubtotal)
	}

	if _, err := ParseEvent([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
	if _, err := ParseEvent([]byte(`{"id":"evt_1"}`)); err == nil {
		t.Fatal("expected error for event without type")
	}
}

func buildSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, signature)
}
