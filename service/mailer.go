package service

import (
	"context"
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail/v2"
)

const resetSubject = "Password Reset Request"

// SMTPMailer sends mail through an SMTP relay with STARTTLS.
type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	d := mail.NewDialer(host, port, username, password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.RetryFailure = false
	if from == "" {
		from = username
	}
	return &SMTPMailer{dialer: d, from: from}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(newResetMessage(m.from, to, resetURL)); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func newResetMessage(from, to, resetURL string) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", resetSubject)
	msg.SetBody("text/plain", fmt.Sprintf(`To reset your password, visit the following link:
%s

If you did not make this request then simply ignore this email and no changes will be made.
`, resetURL))
	return msg
}

// LogMailer is used when no SMTP server is configured. It drops the message
// and records that it did so; the reset link itself is not logged.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, to, _ string) error {
	slog.WarnContext(ctx, "mail transport not configured; reset email dropped", "to", to)
	return nil
}
