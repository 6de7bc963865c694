package helpers

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"text/template"

	"bitbucket.org/konstbyte/backend/db"
	"bitbucket.org/konstbyte/backend/models"
	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	qrcode "github.com/skip2/go-qrcode"
)

type RequestPdf struct {
	bodies []string
}

func (r *RequestPdf) ParseTemplate(templateFileName string, data interface{}) error {
	t, err := template.ParseFiles(templateFileName)
	if err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	if err = t.Execute(buf, data); err != nil {
		return err
	}
	r.bodies = append(r.bodies, buf.String())
	return nil
}

const (
	ConstHTMLNewPage = `
	<div class="new-page"></div>
	`
)

func (r *RequestPdf) GeneratePDF() (*bytes.Buffer, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, err
	}

	pdfg.AddPage(wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(strings.Join(r.bodies, ConstHTMLNewPage)))))

	err = pdfg.Create()
	if err != nil {
		return nil, err
	}

	return pdfg.Buffer(), nil
}

// GenerateReceiptPDF renders the purchase receipt for a paid order. The QR
// code points at the order lookup page so the buyer can pull up the receipt
// later without the attachment.
func GenerateReceiptPDF(order *models.Order, frontendBaseURL string) (*bytes.Buffer, error) {
	r := RequestPdf{}

	stripeID := ""
	if order.Payment != nil {
		stripeID = order.Payment.StripeID
	}

	img, err := qrcode.New(frontendBaseURL+"/orders", qrcode.Medium)
	if err != nil {
		return nil, err
	}

	qrImage, err := EncodeImage(img.Image(256))
	if err != nil {
		return nil, err
	}

	if err := r.ParseTemplate("./templates/pdf/receipt.html", models.ReceiptHTML{
		OrderID:       order.ID,
		Firstname:     RemoveAccents(order.Buyer.Firstname),
		Lastname:      RemoveAccents(order.Buyer.Lastname),
		ArtworkTitle:  order.Artwork.Title,
		Amount:        order.Amount,
		StripeID:      stripeID,
		Image:         qrImage,
		ReceiptNumber: db.GenerateReceiptNumber(order.ID),
	}); err != nil {
		return nil, err
	}

	mem, err := r.GeneratePDF()
	if err != nil {
		return nil, err
	}

	return mem, nil
}

func EncodeImage(m image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
