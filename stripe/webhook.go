package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	// EventCheckoutSessionCompleted is the only event kind that drives
	// reconciliation. Everything else is acknowledged and ignored.
	EventCheckoutSessionCompleted = "checkout.session.completed"

	signatureHeaderTimestampKey = "t"
	signatureHeaderSchemeKey    = "v1"
)

var ErrInvalidSignature = errors.New("invalid stripe signature")

type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object CheckoutSession `json:"object"`
}

type CheckoutSession struct {
	ID             string            `json:"id"`
	Metadata       map[string]string `json:"metadata"`
	AmountTotal    int               `json:"amount_total"`
	AmountSubtotal int               `json:"amount_subtotal"`
	PaymentIntent  string            `json:"payment_intent"`
	CustomerEmail  string            `json:"customer_email"`
}

// VerifyAndParseEvent authenticates the raw webhook body against the
// Stripe-Signature header before any decoding. The signed payload is the
// header timestamp joined to the body bytes exactly as transmitted.
func VerifyAndParseEvent(rawBody []byte, signatureHeader string, secret string) (*Event, error) {
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(rawBody))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	verified := false
	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			verified = true
			break
		}
	}

	if !verified {
		return nil, ErrInvalidSignature
	}

	return ParseEvent(rawBody)
}

// ParseEvent decodes the body without authenticating it. Callers outside of
// tests must only reach this through the unverified development mode.
func ParseEvent(rawBody []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, errors.Wrap(err, "failed unmarshaling stripe event")
	}

	if event.Type == "" {
		return nil, errors.New("stripe event without type")
	}

	return &event, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == signatureHeaderTimestampKey {
			timestamp = value
		}
		if key == signatureHeaderSchemeKey {
			signatures = append(signatures, value)
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("malformed signature header")
	}

	return timestamp, signatures, nil
}
