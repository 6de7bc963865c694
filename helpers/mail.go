package helpers

import (
	"bytes"
	"html/template"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// EmailData renders an HTML template and delivers it through the SMTP
// dialer. FileName and FileContent attach a single document, typically
// the purchase receipt PDF.
type EmailData struct {
	EmailTo      string
	NameTo       string
	EmailFrom    string
	NameFrom     string
	Subject      string
	TemplatePath string
	FileName     string
	FileContent  []byte
	AwsSMTP      *gomail.Dialer
}

func (ed *EmailData) SendEmail(data interface{}) error {
	t, err := template.ParseFiles(ed.TemplatePath)
	if err != nil {
		return errors.Wrap(err, "failed parsing email template")
	}

	var tpl bytes.Buffer
	if err := t.Execute(&tpl, data); err != nil {
		return errors.Wrap(err, "failed executing email template")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(ed.EmailFrom, ed.NameFrom))
	m.SetHeader("To", m.FormatAddress(ed.EmailTo, ed.NameTo))
	m.SetHeader("Subject", ed.Subject)
	m.SetBody("text/html", tpl.String())

	if ed.FileContent != nil {
		m.Attach(ed.FileName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(ed.FileContent)
			return err
		}))
	}

	if err := ed.AwsSMTP.DialAndSend(m); err != nil {
		return errors.Wrap(err, "failed sending email")
	}
	return nil
}
