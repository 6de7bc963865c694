package stripe

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const stripeContentType = `application/x-www-form-urlencoded`

type Stripe struct {
	BaseURL              string
	SecretKey            string
	PathCheckoutSessions string
	Currency             string
}

type CreateCheckoutSessionOpts struct {
	Title             string
	ImageURL          string
	Amount            int
	OrderID           int
	ArtworkID         int
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
	CustomerEmail     string
}

type CreateCheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeErrorResponse struct {
	Error stripeError `json:"error"`
}

type stripeError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CreateCheckoutSession asks Stripe for a hosted payment page. The order id and
// artwork id travel as session metadata and come back untouched in the
// completed-session webhook event.
func (s *Stripe) CreateCheckoutSession(opts *CreateCheckoutSessionOpts) (*CreateCheckoutSessionResponse, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", s.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.Itoa(opts.Amount))
	form.Set("line_items[0][price_data][product_data][name]", opts.Title)
	if opts.ImageURL != "" {
		form.Set("line_items[0][price_data][product_data][images][0]", opts.ImageURL)
	}
	form.Set("success_url", opts.SuccessURL)
	form.Set("cancel_url", opts.CancelURL)
	form.Set("client_reference_id", opts.ClientReferenceID)
	form.Set("metadata[orderId]", strconv.Itoa(opts.OrderID))
	form.Set("metadata[artworkId]", strconv.Itoa(opts.ArtworkID))
	if opts.CustomerEmail != "" {
		form.Set("customer_email", opts.CustomerEmail)
	}

	responseBody, err := s.post(fmt.Sprintf("%s%s", s.BaseURL, s.PathCheckoutSessions), form)
	if err != nil {
		return nil, err
	}

	if responseBody == nil {
		return nil, errors.New("failed creating checkout session in Stripe")
	}

	var response CreateCheckoutSessionResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return nil, err
	}

	if response.ID == "" || response.URL == "" {
		return nil, errors.New("bad response from Stripe")
	}

	return &response, nil
}

func (s *Stripe) post(endpoint string, form url.Values) ([]byte, error) {
	request, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", stripeContentType)
	request.Header.Set("Authorization", "Bearer "+s.SecretKey)

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	responseBody, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusCreated && response.StatusCode != http.StatusOK {
		var errResponse stripeErrorResponse
		if err := json.Unmarshal(responseBody, &errResponse); err == nil && errResponse.Error.Message != "" {
			return nil, errors.Errorf("bad response %d: %s", response.StatusCode, errResponse.Error.Message)
		}
		return nil, errors.Errorf("bad response %d", response.StatusCode)
	}

	return responseBody, nil
}
