// Package mail provides the outbound digest senders.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPSender delivers digests through a single SMTP endpoint.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}

// StdoutSender prints digests instead of emailing them. Used by --dry-run.
type StdoutSender struct{}

func (StdoutSender) Send(to, subject, htmlBody string) error {
	fmt.Printf("To: %s\nSubject: %s\n\n%s\n", to, subject, htmlBody)
	return nil
}
