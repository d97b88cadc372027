package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"time"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a rendered HTML email.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) (SendResult, error)
}

// DisabledSender stands in when SMTP credentials are absent. Every send
// fails explicitly; callers already treat mail as best-effort.
type DisabledSender struct{}

func (DisabledSender) SendEmail(context.Context, string, string, string) (SendResult, error) {
	return SendResult{}, fmt.Errorf("mail transport is not configured")
}

// SMTPSender sends mail over plain SMTP with a fixed sender identity.
type SMTPSender struct {
	host       string
	port       string
	username   string
	password   string
	senderName string
}

func NewSMTPSender(host, port, username, password, senderName string) (*SMTPSender, error) {
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST not set")
	}
	if username == "" {
		return nil, fmt.Errorf("SMTP_USER not set")
	}
	if password == "" {
		return nil, fmt.Errorf("SMTP_PASS not set")
	}

	return &SMTPSender{
		host:       host,
		port:       port,
		username:   username,
		password:   password,
		senderName: senderName,
	}, nil
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) (SendResult, error) {
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	msg := []byte(
		"From: " + s.senderName + " <" + s.username + ">\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := smtp.SendMail(addr, auth, s.username, []string{to}, msg); err != nil {
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	return SendResult{
		MessageID: fmt.Sprintf("smtp-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
