// Package email sends operational notifications over SMTP.
package email

import (
	"context"

	"supply_portal_backend/platform/config"
)

// Sender delivers the notification emails the portal produces.
type Sender interface {
	SendAgreementCreatedEmail(ctx context.Context, toEmail, agreementID string) error
	SendFallbackSummaryEmail(ctx context.Context, toEmail string, applied, failed int) error
}

// NoopSender discards all emails. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendAgreementCreatedEmail(context.Context, string, string) error {
	return nil
}

func (NoopSender) SendFallbackSummaryEmail(context.Context, string, int, int) error {
	return nil
}

// NewSender builds the configured sender. Without SMTP settings it
// returns a NoopSender so callers never have to nil-check.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
