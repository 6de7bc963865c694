package models

import (
	"time"

	"github.com/thedevsaddam/govalidator"
)

type CreateCheckoutOpts struct {
	ArtworkID  int    `json:"artwork_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

var CreateCheckoutRules = govalidator.MapData{
	"artwork_id":  []string{"required", "numeric"},
	"success_url": []string{"url"},
	"cancel_url":  []string{"url"},
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type GetOrdersOpts struct {
	CreatedFrom string   `schema:"created_from"`
	CreatedTo   string   `schema:"created_to"`
	Statuses    []string `schema:"statuses"`
	BuyerIDs    []int    `schema:"buyer_ids"`
	LimitFrom   int      `schema:"limit_from"`
	LimitTo     int      `schema:"limit_to"`
}

var GetOrdersRules = govalidator.MapData{
	"created_from": []string{"date_ISO8601"},
	"created_to":   []string{"date_ISO8601"},
	"statuses":     []string{"array_string"},
	"buyer_ids":    []string{"array_int"},
	"limit_from":   []string{"numeric"},
	"limit_to":     []string{"numeric"},
}

// Order.Amount is captured from the artwork price when the order is created
// and is never recomputed afterwards.
type Order struct {
	ID      int       `json:"id,omitempty"`
	Buyer   *User     `json:"buyer,omitempty"`
	Artwork *Artwork  `json:"artwork,omitempty"`
	Amount  int       `json:"amount"`
	Status  string    `json:"status"`
	Payment *Payment  `json:"payment,omitempty"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

type OrdersStruct struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}
