package notifications

import (
	"fmt"
	"io"

	"github.com/go-gomail/gomail"

	"github.com/ederjesus1004/Prescito-Doctor/pkg/config"
)

// Sender delivers voucher emails with a PDF attachment
type Sender interface {
	SendVoucher(to, subject, body, attachmentName string, attachment []byte) error
}

// EmailSender implements Sender over SMTP
type EmailSender struct {
	cfg *config.SMTPConfig
}

// NewEmailSender creates a new SMTP email sender
func NewEmailSender(cfg *config.SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// SendVoucher sends the voucher email with the PDF attached
func (s *EmailSender) SendVoucher(to, subject, body, attachmentName string, attachment []byte) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if len(attachment) > 0 {
		m.Attach(attachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachment)
			return err
		}))
	}

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}

	return nil
}
