package api

import (
	"fmt"
	"net/http"

	"bitbucket.org/konstbyte/backend/config"
	"bitbucket.org/konstbyte/backend/middlewares"
	"bitbucket.org/konstbyte/backend/models"
	"bitbucket.org/konstbyte/backend/stripe"
	shortuuid "github.com/lithammer/shortuuid/v3"
	"github.com/mitchellh/mapstructure"
	"github.com/thedevsaddam/govalidator"
)

// CreateCheckout creates a pending order for an artwork and hands the buyer
// off to the processor's hosted payment page. The order amount is captured
// here, once, from the artwork's current price; the session is created from
// the order's amount so a concurrent price edit cannot leak into the charge.
func CreateCheckout(ctx *config.AppContext, w *middlewares.ResponseWriter, r *http.Request) {
	w.GetRequestLanguage(r)

	userInfo := models.InfoUser{}
	mapstructure.Decode(r.Context().Value("user"), &userInfo)

	if userInfo.ID == 0 {
		w.Write(http.StatusUnauthorized, nil, nil, middlewares.Responses.Unauthenticated)
		return
	}

	var opts models.CreateCheckoutOpts
	validatorOpts := govalidator.Options{
		Request: r,
		Rules:   models.CreateCheckoutRules,
		Data:    &opts,
	}
	v := govalidator.New(validatorOpts)
	errs := v.ValidateJSON()
	if len(errs) > 0 {
		w.WriteJSON(http.StatusBadRequest, errs, nil, "failed validations")
		return
	}

	artwork, err := ctx.DB.GetArtworkByID(opts.ArtworkID)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	if artwork == nil {
		w.Write(http.StatusNotFound, nil, nil, middlewares.Responses.ArtworkNotFound)
		return
	}

	order, err := ctx.DB.InsertOrder(userInfo.ID, artwork.ID, artwork.Price)
	if err != nil {
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.InternalServerError)
		return
	}

	successURL := opts.SuccessURL
	if successURL == "" {
		successURL = fmt.Sprintf("%s%s", ctx.Config.FrontendBaseURL, ctx.Config.Stripe.SuccessPath)
	}
	cancelURL := opts.CancelURL
	if cancelURL == "" {
		cancelURL = fmt.Sprintf("%s%s", ctx.Config.FrontendBaseURL, ctx.Config.Stripe.CancelPath)
	}

	response, err := ctx.Stripe.CreateCheckoutSession(&stripe.CreateCheckoutSessionOpts{
		Title:             artwork.Title,
		ImageURL:          artwork.ImageURL,
		Amount:            order.Amount,
		OrderID:           order.ID,
		ArtworkID:         artwork.ID,
		ClientReferenceID: shortuuid.New(),
		SuccessURL:        successURL,
		CancelURL:         cancelURL,
		CustomerEmail:     userInfo.Email,
	})
	if err != nil {
		// The pending order stays behind on purpose: it can only ever
		// transition through a verified webhook, so an orphan is harmless.
		w.Write(http.StatusInternalServerError, nil, err, middlewares.Responses.PaymentProblems)
		return
	}

	if response == nil {
		w.Write(http.StatusInternalServerError, nil, nil, middlewares.Responses.PaymentProblems)
		return
	}

	w.WriteJSON(http.StatusOK, models.CheckoutResponse{
		SessionID: response.ID,
		URL:       response.URL,
	}, nil, "")
	return
}
