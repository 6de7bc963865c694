package middlewares

import (
	"net/http/httptest"
	"testing"
)

func TestStartRequestLoggerIsPerWriter(t *testing.T) {
	first := NewResponseWriter(httptest.NewRecorder())
	firstReq := httptest.NewRequest("POST", "/checkout", nil)
	firstReq.Header.Set("X-Request-ID", "req-1")
	first.StartRequestLogger(firstReq)

	second := NewResponseWriter(httptest.NewRecorder())
	secondReq := httptest.NewRequest("POST", "/stripe/webhook", nil)
	secondReq.Header.Set("X-Request-ID", "req-2")
	second.StartRequestLogger(secondReq)

	if got := first.entry().Data["request_id"]; got != "req-1" {
		t.Fatalf("expected first writer to keep request_id req-1, got %v", got)
	}
	if got := second.entry().Data["request_id"]; got != "req-2" {
		t.Fatalf("expected second writer to keep request_id req-2, got %v", got)
	}
	if got := first.entry().Data["url"]; got != "/checkout" {
		t.Fatalf("expected first writer to keep its own url, got %v", got)
	}
}

func TestStartLoggerChainsRequestFields(t *testing.T) {
	w := NewResponseWriter(httptest.NewRecorder())
	req := httptest.NewRequest("POST", "/stripe/webhook", nil)
	req.Header.Set("X-Request-ID", "req-3")
	w.StartRequestLogger(req)
	w.StartLogger("StripeWebhook")

	if got := w.entry().Data["handler"]; got != "StripeWebhook" {
		t.Fatalf("expected handler field, got %v", got)
	}
	if got := w.entry().Data["request_id"]; got != "req-3" {
		t.Fatalf("expected handler entry to keep the request_id, got %v", got)
	}
}

func TestEntryWithoutRequestLogger(t *testing.T) {
	w := NewResponseWriter(httptest.NewRecorder())
	if w.entry() == nil {
		t.Fatal("expected a usable fallback entry")
	}
}
