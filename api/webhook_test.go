package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/konstbyte/backend/config"
	"bitbucket.org/konstbyte/backend/db"
	"bitbucket.org/konstbyte/backend/middlewares"
	"bitbucket.org/konstbyte/backend/models"
	"github.com/pkg/errors"
)

const testWebhookSecret = "whsec_test"

type storageFake struct {
	db.Storage

	getArtworkByID       func(int) (*models.Artwork, error)
	insertOrder          func(int, int, int) (*models.Order, error)
	getOrderByID         func(int) (*models.Order, error)
	markOrderPaid        func(int, string, int) error
	getPaymentByOrderID  func(int) (*models.Payment, error)
	getPaymentByStripeID func(string) (*models.Payment, error)
}

func (s *storageFake) GetArtworkByID(artworkID int) (*models.Artwork, error) {
	return s.getArtworkByID(artworkID)
}

func (s *storageFake) InsertOrder(buyerID int, artworkID int, amount int) (*models.Order, error) {
	return s.insertOrder(buyerID, artworkID, amount)
}

func (s *storageFake) GetOrderByID(orderID int) (*models.Order, error) {
	return s.getOrderByID(orderID)
}

func (s *storageFake) MarkOrderPaid(orderID int, stripeID string, amount int) error {
	return s.markOrderPaid(orderID, stripeID, amount)
}

func (s *storageFake) GetPaymentByOrderID(orderID int) (*models.Payment, error) {
	if s.getPaymentByOrderID == nil {
		return nil, nil
	}
	return s.getPaymentByOrderID(orderID)
}

func (s *storageFake) GetPaymentByStripeID(stripeID string) (*models.Payment, error) {
	if s.getPaymentByStripeID == nil {
		return nil, nil
	}
	return s.getPaymentByStripeID(stripeID)
}

func webhookContext(storage db.Storage) *config.AppContext {
	ctx := &config.AppContext{}
	ctx.Config.Stripe.WebhookSecret = testWebhookSecret
	ctx.Config.DB = storage
	ctx.DB = storage
	return ctx
}

func signedWebhookRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewBufferString(body))
	timestamp := time.Now().Unix()
	signedPayload := fmt.Sprintf("%d.%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(signedPayload))
	r.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil))))
	return r
}

func completedSessionBody(orderID string) string {
	return fmt.Sprintf(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","metadata":{"orderId":"%s","artworkId":"4"},"amount_total":2400,"payment_intent":"pi_123"}}}`, orderID)
}

func TestStripeWebhookMarksOrderPaid(t *testing.T) {
	var markedOrderID, markedAmount int
	var markedStripeID string
	storage := &storageFake{
		getOrderByID: func(orderID int) (*models.Order, error) {
			return &models.Order{ID: orderID, Amount: 2400, Status: db.ConstOrderStatuses.Pending}, nil
		},
		markOrderPaid: func(orderID int, stripeID string, amount int) error {
			markedOrderID = orderID
			markedStripeID = stripeID
			markedAmount = amount
			return nil
		},
	}

	recorder := httptest.NewRecorder()
	StripeWebhook(webhookContext(storage), middlewares.NewResponseWriter(recorder), signedWebhookRequest(t, completedSessionBody("17")))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if markedOrderID != 17 {
		t.Fatalf("expected order 17 marked paid, got %d", markedOrderID)
	}
	if markedStripeID != "pi_123" {
		t.Fatalf("expected stripe id pi_123, got %s", markedStripeID)
	}
	if markedAmount != 2400 {
		t.Fatalf("expected amount 2400, got %d", markedAmount)
	}
	if body := recorder.Body.String(); body != `{"received":true}` {
		t.Fatalf("unexpected ack body %s", body)
	}
}

func TestStripeWebhookRedelivery(t *testing.T) {
	var lookedUpStripeID string
	storage := &storageFake{
		getOrderByID: func(orderID int) (*models.Order, error) {
			return &models.Order{ID: orderID, Amount: 2400, Status: db.ConstOrderStatuses.Paid}, nil
		},
		markOrderPaid: func(int, string, int) error {
			return db.ErrAlreadyReconciled
		},
		getPaymentByStripeID: func(stripeID string) (*models.Payment, error) {
			lookedUpStripeID = stripeID
			return &models.Payment{ID: 1, OrderID: 17, StripeID: stripeID, Amount: 2400}, nil
		},
	}

	recorder := httptest.NewRecorder()
	StripeWebhook(webhookContext(storage), middlewares.NewResponseWriter(recorder), signedWebhookRequest(t, completedSessionBody("17")))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected redelivery to be acknowledged, got %d", recorder.Code)
	}
	if lookedUpStripeID != "pi_123" {
		t.Fatalf("expected the existing payment to be cross-checked, got %q", lookedUpStripeID)
	}
}

func TestStripeWebhookRedeliveryForeignPayment(t *testing.T) {
	// Same transaction id recorded against another order: still a 200 no-op,
	// redelivery cannot repair it.
	storage := &storageFake{
		getOrderByID: func(orderID int) (*models.Order, error) {
			return &models.Order{ID: orderID, Amount: 2400, Status: db.ConstOrderStatuses.Pending}, nil
		},
		markOrderPaid: func(int, string, int) error {
			return db.ErrAlreadyReconciled
		},
		getPaymentByStripeID: func(stripeID string) (*models.Payment, error) {
			return &models.Payment{ID: 1, OrderID: 99, StripeID: stripeID, Amount: 2400}, nil
		},
	}

	recorder := httptest.NewRecorder()
	StripeWebhook(webhookContext(storage), middlewares.NewResponseWriter(recorder), signedWebhookRequest(t, completedSessionBody("17")))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected foreign payment conflict to be acknowledged, got %d", recorder.Code)
	}
}

func TestStripeWebhookInvalidSignature(t *testing.T) {
	storage := &storageFake{
		getOrderByID: func(int) (*models.Order, error) {
			t.Fatal("store must not be touched on an unverified event")
			return nil, nil
		},
		markOrderPaid: func(int, string, int) error {
			t.Fatal("store must not be touched on an unverified event")
			return nil
		},
	}

	body := completedSessionBody("17")
	r := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewBufferString(body))
	r.Header.Set("Stripe-Signature", "t=123,v1=deadbeef")

	recorder := httptest.NewRecorder()
	StripeWebhook(webhookContext(storage), middlewares.NewResponseWriter(recorder), r)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestStripeWebhookIgnoresOtherEventTypes(t *testing.T) {
	storage := &storageFake{
		markOrderPaid: func(int, string, int) error {
			t.Fatal("unexpected MarkOrderPaid call")
			return nil
		},
	}

	body := `{"id":"evt_2","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`
	recorder := httptest.NewRecorder()
	StripeWebhook(webhookContext(storage), middlewares.NewResponseWriter(recorder), signedWebhookRequest(t, body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected unknown event types to be acknowledged, got %d", recorder.Code)
	}
}

func TestStripeWebhookMissingOrderMetadata(t *testing.T) {
	storage := &storageFake{
		markOrderPaid: func(int, string, int) error {
			t.Fatal("unexpected MarkOrderPaid call")
			return nil
		},
	}

	body := `{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_test_2","metadata":{},"amount_total":2400}}}`
	recorder := httptest.NewRecorder()
	StripeWebhook(webhookContext(storage), middlewares.NewResponseWriter(recorder), signedWebhookRequest(t, body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected session without order metadata to be acknowledged, got %d", recorder.Code)
	}
}

func TestStripeWebhookUnknownOrder(t *testing.T) {
	storage := &storageFake{
		getOrderByID: func(int) (*models.Order, error) {
			return nil, nil
		},
		markOrderPaid: func(int, string, int) error {
			t.Fatal("unexpected MarkOrderPaid call")
			return nil
		},
	}

	recorder := httptest.NewRecorder()
	StripeWebhook(webhookContext(storage), middlewares.NewResponseWriter(recorder), signedWebhookRequest(t, completedSessionBody("999")))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected unknown order to be acknowledged, got %d", recorder.Code)
	}
}

func TestStripeWebhookStoreFailure(t *testing.T) {
	storage := &storageFake{
		getOrderByID: func(orderID int) (*models.Order, error) {
			return &models.Order{ID: orderID, Amount: 2400, Status: db.ConstOrderStatuses.Pending}, nil
		},
		markOrderPaid: func(int, string, int) error {
			return errors.New("connection reset")
		},
	}

	recorder := httptest.NewRecorder()
	StripeWebhook(webhookContext(storage), middlewares.NewResponseWriter(recorder), signedWebhookRequest(t, completedSessionBody("17")))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 so the processor retries, got %d", recorder.Code)
	}
}

func TestStripeWebhookFallsBackToSessionID(t *testing.T) {
	var markedStripeID string
	var markedAmount int
	storage := &storageFake{
		getOrderByID: func(orderID int) (*models.Order, error) {
			return &models.Order{ID: orderID, Amount: 900, Status: db.ConstOrderStatuses.Pending}, nil
		},
		markOrderPaid: func(_ int, stripeID string, amount int) error {
			markedStripeID = stripeID
			markedAmount = amount
			return nil
		},
	}

	body := `{"id":"evt_4","type":"checkout.session.completed","data":{"object":{"id":"cs_test_7","metadata":{"orderId":"23"},"amount_subtotal":900}}}`
	recorder := httptest.NewRecorder()
	StripeWebhook(webhookContext(storage), middlewares.NewResponseWriter(recorder), signedWebhookRequest(t, body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if markedStripeID != "cs_test_7" {
		t.Fatalf("expected fallback to session id, got %s", markedStripeID)
	}
	if markedAmount != 900 {
		t.Fatalf("expected subtotal fallback 900, got %d", markedAmount)
	}
}

func TestStripeWebhookUnverifiedMode(t *testing.T) {
	var marked bool
	storage := &storageFake{
		getOrderByID: func(orderID int) (*models.Order, error) {
			return &models.Order{ID: orderID, Amount: 2400, Status: db.ConstOrderStatuses.Pending}, nil
		},
		markOrderPaid: func(int, string, int) error {
			marked = true
			return nil
		},
	}

	ctx := webhookContext(storage)
	ctx.Config.Stripe.WebhookSecret = ""

	r := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewBufferString(completedSessionBody("17")))
	recorder := httptest.NewRecorder()
	StripeWebhook(ctx, middlewares.NewResponseWriter(recorder), r)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected unsigned event to be processed without a secret, got %d", recorder.Code)
	}
	if !marked {
		t.Fatal("expected the order to be reconciled")
	}
}
