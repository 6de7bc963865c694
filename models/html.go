package models

// ReceiptHTML feeds the purchase receipt email and PDF templates.
type ReceiptHTML struct {
	OrderID       int
	Firstname     string
	Lastname      string
	ArtworkTitle  string
	Amount        int
	StripeID      string
	Image         string
	ReceiptNumber string
}

type ReceiptPDF struct {
	URL string `json:"url"`
}

type PasswordRecoverHTML struct {
	Firstname string
	Lastname  string
	URL       string
}
