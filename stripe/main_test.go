package stripe

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_123" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = map[string]string{}
		for key := range r.PostForm {
			gotForm[key] = r.PostForm.Get(key)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/pay/cs_test_1"}`))
	}))
	defer server.Close()

	client := &Stripe{
		BaseURL:              server.URL,
		SecretKey:            "sk_test_123",
		PathCheckoutSessions: "/v1/checkout/sessions",
		Currency:             "sek",
	}

	response, err := client.CreateCheckoutSession(&CreateCheckoutSessionOpts{
		Title:             "Skogen om natten",
		Amount:            2400,
		OrderID:           17,
		ArtworkID:         4,
		ClientReferenceID: "ref-17",
		SuccessURL:        "https://www.konstbyte.se/checkout/success",
		CancelURL:         "https://www.konstbyte.se/checkout/cancel",
		CustomerEmail:     "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("create checkout session: %v", err)
	}

	if response.ID != "cs_test_1" {
		t.Fatalf("expected session id cs_test_1, got %s", response.ID)
	}
	if response.URL != "https://checkout.stripe.com/pay/cs_test_1" {
		t.Fatalf("unexpected session url %s", response.URL)
	}

	expected := map[string]string{
		"mode":                                   "payment",
		"line_items[0][price_data][currency]":    "sek",
		"line_items[0][price_data][unit_amount]": "2400",
		"metadata[orderId]":                      "17",
		"metadata[artworkId]":                    "4",
		"client_reference_id":                    "ref-17",
		"customer_email":                         "buyer@example.com",
	}
	for key, want := range expected {
		if got := gotForm[key]; got != want {
			t.Errorf("form field %s: expected %q, got %q", key, want, got)
		}
	}
}

func TestCreateCheckoutSessionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined."}}`))
	}))
	defer server.Close()

	client := &Stripe{
		BaseURL:              server.URL,
		SecretKey:            "sk_test_123",
		PathCheckoutSessions: "/v1/checkout/sessions",
		Currency:             "sek",
	}

	_, err := client.CreateCheckoutSession(&CreateCheckoutSessionOpts{
		Title:   "Skogen om natten",
		Amount:  2400,
		OrderID: 17,
	})
	if err == nil {
		t.Fatal("expected error from declined session")
	}
}

func TestCreateCheckoutSessionBadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":""}`))
	}))
	defer server.Close()

	client := &Stripe{
		BaseURL:              server.URL,
		SecretKey:            "sk_test_123",
		PathCheckoutSessions: "/v1/checkout/sessions",
		Currency:             "sek",
	}

	if _, err := client.CreateCheckoutSession(&CreateCheckoutSessionOpts{Title: "x", Amount: 1}); err == nil {
		t.Fatal("expected error for response without session id")
	}
}
