package api

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"

	"bitbucket.org/konstbyte/backend/config"
	"bitbucket.org/konstbyte/backend/db"
	"bitbucket.org/konstbyte/backend/helpers"
	"bitbucket.org/konstbyte/backend/middlewares"
	"bitbucket.org/konstbyte/backend/models"
	"bitbucket.org/konstbyte/backend/stripe"
	"github.com/pkg/errors"
)

const stripeSignatureHeader = "Stripe-Signature"

// StripeWebhook reconciles the authoritative payment result delivered by the
// processor. Delivery is at-least-once and unordered, so every effect in here
// is idempotent. Response codes steer the processor's retry loop: 2xx means
// done (including "nothing to do"), non-2xx means deliver again.
func StripeWebhook(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	w.StartLogger("StripeWebhook")

	// Signature verification needs the body bytes exactly as transmitted, so
	// the raw read happens before any parsing.
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		w.LogError(err, "failed reading body")
		w.WriteJSON(http.StatusBadRequest, nil, err, "failed reading body")
		return
	}
	defer r.Body.Close()

	var event *stripe.Event
	secret := ctx.Config.Stripe.WebhookSecret
	if secret != "" {
		event, err = stripe.VerifyAndParseEvent(body, r.Header.Get(stripeSignatureHeader), secret)
		if err != nil {
			w.LogError(err, "failed verifying event signature")
			w.WriteJSON(http.StatusBadRequest, nil, err, "invalid signature")
			return
		}
	} else {
		// Startup refuses an empty secret in production, so this branch only
		// exists for local development against unsigned test payloads.
		w.LogError(nil, "webhook signature verification disabled")
		event, err = stripe.ParseEvent(body)
		if err != nil {
			w.LogError(err, "failed parsing event")
			w.WriteJSON(http.StatusBadRequest, nil, err, "invalid payload")
			return
		}
	}

	if event.Type != stripe.EventCheckoutSessionCompleted {
		w.LogInfo(event.Type, "ignoring event type")
		acknowledge(w)
		return
	}

	session := event.Data.Object

	orderIDValue := session.Metadata["orderId"]
	if orderIDValue == "" {
		// A completed session without our metadata can never be matched to an
		// order; retrying will not fix it, so acknowledge and move on.
		w.LogError(nil, "completed session without order id metadata")
		acknowledge(w)
		return
	}

	orderID, err := strconv.Atoi(orderIDValue)
	if err != nil {
		w.LogError(err, "failed parsing order id metadata")
		acknowledge(w)
		return
	}

	order, err := ctx.DB.GetOrderByID(orderID)
	if err != nil {
		w.LogError(err, "failed getting order")
		w.WriteJSON(http.StatusInternalServerError, nil, err, "failed getting order")
		return
	}

	if order == nil {
		w.LogError(errors.Errorf("order %d not found", orderID), "order referenced by event does not exist")
		acknowledge(w)
		return
	}

	amount := session.AmountTotal
	if amount == 0 {
		amount = session.AmountSubtotal
	}

	stripeID := session.PaymentIntent
	if stripeID == "" {
		stripeID = session.ID
	}

	err = ctx.DB.MarkOrderPaid(orderID, stripeID, amount)
	if err == db.ErrAlreadyReconciled {
		// The transaction id was seen before. Cross-check which order holds
		// it: a mismatch means the processor reused the id, which is worth an
		// alert but still nothing a retry could repair.
		payment, paymentErr := ctx.DB.GetPaymentByStripeID(stripeID)
		if paymentErr != nil {
			w.LogError(paymentErr, "failed getting payment for reconciled event")
		} else if payment != nil && payment.OrderID != orderID {
			w.LogError(errors.Errorf("transaction %s recorded for order %d, event names order %d", stripeID, payment.OrderID, orderID), "reconciled payment belongs to another order")
		}
		w.LogInfo(orderID, "order already reconciled")
		acknowledge(w)
		return
	}
	if err != nil {
		// A transient store failure is the one case worth a retry: the
		// transition is idempotent, so redelivery converges.
		w.LogError(err, "failed marking order paid")
		w.WriteJSON(http.StatusInternalServerError, nil, err, "failed updating order")
		return
	}

	go sendReceipt(ctx, w, orderID)

	w.LogInfo(orderID, "order reconciled")
	acknowledge(w)
	return
}

func acknowledge(w *middlewares.ResponseWriter) {
	w.WriteJSON(http.StatusOK, models.WebhookAck{Received: true}, nil, "")
}

// sendReceipt runs outside the request so a slow template render or SMTP
// dial never pushes the acknowledgment past the processor's timeout.
func sendReceipt(ctx *config.AppContext, w *middlewares.ResponseWriter, orderID int) {
	if ctx.AwsSMTP == nil {
		return
	}

	order, err := ctx.DB.GetOrderByID(orderID)
	if err != nil {
		w.LogError(err, "failed getting order for receipt")
		return
	}
	if order == nil || order.Buyer == nil || order.Artwork == nil {
		w.LogError(nil, "incomplete order for receipt")
		return
	}

	// The payment row is resolved directly so the receipt carries the
	// processor transaction id even when the order read raced the commit.
	payment, err := ctx.DB.GetPaymentByOrderID(orderID)
	if err != nil {
		w.LogError(err, "failed getting payment for receipt")
		return
	}
	if payment != nil {
		order.Payment = payment
	}

	pdfBuffer, err := helpers.GenerateReceiptPDF(order, ctx.Config.FrontendBaseURL)
	if err != nil {
		w.LogError(err, "failed generating receipt PDF")
		return
	}

	if ctx.AwsS3 != nil {
		if _, err := helpers.AddFileToS3(ctx, pdfBuffer, fmt.Sprintf("%s/%d.pdf", ctx.Config.AwsS3.S3PathReceipt, order.ID)); err != nil {
			w.LogError(err, "failed uploading receipt PDF")
		}
	}

	ed := &helpers.EmailData{
		EmailTo:      order.Buyer.Email,
		NameTo:       order.Buyer.Firstname,
		EmailFrom:    ctx.Config.Mail.EmailFrom,
		NameFrom:     ctx.Config.Mail.NameFrom,
		Subject:      ctx.Config.Mail.PaymentSuccess.Subject,
		TemplatePath: fmt.Sprintf("%s%s/%s", ctx.Config.Mail.Folder, ctx.Config.Mail.Path, ctx.Config.Mail.PaymentSuccess.Template),
		FileName:     ctx.Config.Mail.PaymentSuccess.FileName,
		FileContent:  pdfBuffer.Bytes(),
		AwsSMTP:      ctx.AwsSMTP,
	}

	stripeID := ""
	if order.Payment != nil {
		stripeID = order.Payment.StripeID
	}

	if err := ed.SendEmail(models.ReceiptHTML{
		OrderID:      order.ID,
		Firstname:    order.Buyer.Firstname,
		Lastname:     order.Buyer.Lastname,
		ArtworkTitle: order.Artwork.Title,
		Amount:       order.Amount,
		StripeID:     stripeID,
	}); err != nil {
		w.LogError(err, "failed sending receipt email")
		return
	}

	w.LogInfo(nil, "success sending receipt email")
}
