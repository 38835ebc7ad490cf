package handlers

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers account e-mails (password reset, address verification).
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer records outgoing mail in the log instead of sending it.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.Logger.Info("outgoing mail",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_len", len(body)))
	return nil
}
