package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface over a direct SMTP connection
// via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendOfferReceivedEmail(ctx context.Context, toEmail, professionalName, categoryName string, priceCents int64) error {
	content, err := renderEmailTemplate("offer_received.html", offerReceivedEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectOfferReceived,
			Heading: "Er staat een nieuwe lead voor u klaar",
		},
		ProfessionalName: professionalName,
		CategoryName:     categoryName,
		PriceFormatted:   formatCurrencyEUR(priceCents),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectOfferReceived, content)
}

func (s *SMTPSender) SendLeadWonEmail(ctx context.Context, toEmail, professionalName string, chargedCents, balanceCents int64) error {
	content, err := renderEmailTemplate("lead_won.html", leadWonEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectLeadWon,
			Heading: "U heeft de lead gewonnen",
		},
		ProfessionalName: professionalName,
		ChargedFormatted: formatCurrencyEUR(chargedCents),
		BalanceFormatted: formatCurrencyEUR(balanceCents),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectLeadWon, content)
}

func (s *SMTPSender) SendLeadLostEmail(ctx context.Context, toEmail, professionalName string) error {
	content, err := renderEmailTemplate("lead_lost.html", leadLostEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectLeadLost,
			Heading: "De lead is aan een andere professional toegekend",
		},
		ProfessionalName: professionalName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectLeadLost, content)
}

func (s *SMTPSender) SendLowBalanceEmail(ctx context.Context, toEmail, professionalName string, balanceCents, thresholdCents int64) error {
	content, err := renderEmailTemplate("low_balance.html", lowBalanceEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectLowBalance,
			Heading: "Uw walletsaldo is laag",
		},
		ProfessionalName:   professionalName,
		BalanceFormatted:   formatCurrencyEUR(balanceCents),
		ThresholdFormatted: formatCurrencyEUR(thresholdCents),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectLowBalance, content)
}

func (s *SMTPSender) SendWalletCreditedEmail(ctx context.Context, toEmail, professionalName string, amountCents, balanceCents int64) error {
	content, err := renderEmailTemplate("wallet_credited.html", walletCreditedEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectWalletCredited,
			Heading: "Uw wallet is opgewaardeerd",
		},
		ProfessionalName: professionalName,
		AmountFormatted:  formatCurrencyEUR(amountCents),
		BalanceFormatted: formatCurrencyEUR(balanceCents),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWalletCredited, content)
}
