// Package email renders and delivers transactional email.
package email

import (
	"context"

	"leadmarket_backend/platform/config"
)

// Sender delivers the transactional messages of the lead lifecycle.
type Sender interface {
	// SendOfferReceivedEmail notifies a professional of a new lead.
	SendOfferReceivedEmail(ctx context.Context, toEmail, professionalName, categoryName string, priceCents int64) error
	// SendLeadWonEmail confirms a won lead and the wallet charge.
	SendLeadWonEmail(ctx context.Context, toEmail, professionalName string, chargedCents, balanceCents int64) error
	// SendLeadLostEmail tells a professional the lead went to someone else.
	SendLeadLostEmail(ctx context.Context, toEmail, professionalName string) error
	// SendLowBalanceEmail warns that the wallet dropped under its threshold.
	SendLowBalanceEmail(ctx context.Context, toEmail, professionalName string, balanceCents, thresholdCents int64) error
	// SendWalletCreditedEmail is the receipt for a recharge or refund.
	SendWalletCreditedEmail(ctx context.Context, toEmail, professionalName string, amountCents, balanceCents int64) error
}

// NewSender builds the configured sender, or a NoopSender when email
// delivery is disabled.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

// NoopSender drops all messages. Used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendOfferReceivedEmail(ctx context.Context, toEmail, professionalName, categoryName string, priceCents int64) error {
	return nil
}

func (NoopSender) SendLeadWonEmail(ctx context.Context, toEmail, professionalName string, chargedCents, balanceCents int64) error {
	return nil
}

func (NoopSender) SendLeadLostEmail(ctx context.Context, toEmail, professionalName string) error {
	return nil
}

func (NoopSender) SendLowBalanceEmail(ctx context.Context, toEmail, professionalName string, balanceCents, thresholdCents int64) error {
	return nil
}

func (NoopSender) SendWalletCreditedEmail(ctx context.Context, toEmail, professionalName string, amountCents, balanceCents int64) error {
	return nil
}
