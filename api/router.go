package api

import (
	"net/http"

	"bitbucket.org/konstbyte/backend/config"
	"bitbucket.org/konstbyte/backend/middlewares"
	"bitbucket.org/konstbyte/backend/server"
)

// HealthcheckHandler indicates the service's healthy
func HealthcheckHandler(_ *config.AppContext, w *middlewares.ResponseWriter, _ *http.Request) {
	w.String(http.StatusOK, "OK")
}

// GetRoutes ...
func GetRoutes() []*server.Route {
	return []*server.Route{
		{Path: "/healthcheck", Methods: []string{"GET", "HEAD"}, Handler: HealthcheckHandler, IsProtected: false},

		// Auth
		{Path: "/auth/login", Methods: []string{"POST", "HEAD"}, Handler: Login, IsProtected: false},
		{Path: "/auth/password", Methods: []string{"PUT", "HEAD"}, Handler: UpdateUserPassword, IsProtected: false},
		{Path: "/auth/token", Methods: []string{"POST", "HEAD"}, Handler: SendRememberToken, IsProtected: false},

		// User
		{Path: "/user", Methods: []string{"POST", "HEAD"}, Handler: InsertUser, IsProtected: false},
		{Path: "/user", Methods: []string{"GET", "HEAD"}, Handler: GetUsers, IsProtected: true},
		{Path: "/user/{id}", Methods: []string{"GET", "HEAD"}, Handler: GetUser, IsProtected: true},

		// Artwork
		{Path: "/artwork", Methods: []string{"POST", "HEAD"}, Handler: InsertArtwork, IsProtected: true},
		{Path: "/artwork", Methods: []string{"GET", "HEAD"}, Handler: GetArtworks, IsProtected: false},
		{Path: "/artwork/{id}", Methods: []string{"GET", "HEAD"}, Handler: GetArtwork, IsProtected: false},
		{Path: "/artwork/{id}", Methods: []string{"PUT", "HEAD"}, Handler: UpdateArtwork, IsProtected: true},

		// Checkout
		{Path: "/checkout", Methods: []string{"POST", "HEAD"}, Handler: CreateCheckout, IsProtected: true},

		// Order
		{Path: "/order", Methods: []string{"GET", "HEAD"}, Handler: GetOrders, IsProtected: true},
		{Path: "/order/{id}", Methods: []string{"GET", "HEAD"}, Handler: GetOrder, IsProtected: true},

		// Stripe notifies payment completions here, authenticated by
		// signature instead of a bearer token.
		{Path: "/stripe/webhook", Methods: []string{"POST", "HEAD"}, Handler: StripeWebhook, IsProtected: false},
	}
}
