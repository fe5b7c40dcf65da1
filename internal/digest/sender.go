package digest

import (
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/ctleads/harvester/internal/config"
	"github.com/ctleads/harvester/pkg/logger"
)

// Sender delivers one rendered digest email.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// NullSender logs instead of delivering. Used when no email provider is
// configured.
type NullSender struct {
	logger *logger.Logger
}

func (s *NullSender) Send(to, subject, htmlBody, textBody string) error {
	s.logger.Info("Email send skipped (no provider configured)", "to", to, "subject", subject)
	return nil
}

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(to, subject, htmlBody, textBody string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}
	if _, err := s.client.Emails.Send(params); err != nil {
		return fmt.Errorf("resend delivery failed: %w", err)
	}
	return nil
}

// NewSender selects the delivery variant once, from configuration.
func NewSender(cfg *config.Config, log *logger.Logger) (Sender, error) {
	switch cfg.EmailProvider {
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("EMAIL_PROVIDER is resend but RESEND_API_KEY is not set")
		}
		return &ResendSender{client: resend.NewClient(cfg.ResendAPIKey), from: cfg.EmailFrom}, nil
	case "none", "":
		return &NullSender{logger: log}, nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.EmailProvider)
	}
}
