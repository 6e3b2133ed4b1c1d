package delivery

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/dmcruz/news-digest/app/cfg"
)

// EmailSender delivers messages over authenticated SMTP with STARTTLS.
type EmailSender struct {
	host     string
	port     string
	address  string
	password string
}

var _ Sender = (*EmailSender)(nil)

func NewEmailSender() *EmailSender {
	cfg := cfg.Get()

	return &EmailSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		address:  cfg.EmailAddress,
		password: cfg.EmailPassword,
	}
}

func (s *EmailSender) Send(ctx context.Context, address, subject, message string) error {
	if s.address == "" || s.password == "" {
		return fmt.Errorf("email credentials are not configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.address, address, subject, message)

	auth := smtp.PlainAuth("", s.address, s.password, s.host)
	if err := smtp.SendMail(s.host+":"+s.port, auth, s.address, []string{address}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
