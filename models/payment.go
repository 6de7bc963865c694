package models

import "time"

// Payment is the receipt of settled funds for one order. StripeID is the
// processor transaction id and is unique across all payments.
type Payment struct {
	ID       int       `json:"id,omitempty"`
	OrderID  int       `json:"order_id,omitempty"`
	StripeID string    `json:"stripe_id,omitempty"`
	Amount   int       `json:"amount,omitempty"`
	Created  time.Time `json:"created"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}
