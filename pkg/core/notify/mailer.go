// Package notify delivers ROI reports by email.
package notify

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"amplify_roi/pkg/models"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Sender is the part of the Resend email service the mailer uses.
type Sender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ReportEmail is one report delivery request.
type ReportEmail struct {
	To            string
	Name          string
	Company       string
	CalculationID string
	ROIPercentage float64
	HTML          string
	GDPRConsent   bool
}

// Mailer sends rendered reports.
type Mailer struct {
	sender Sender
	from   string
	log    zerolog.Logger
}

// NewMailer creates a mailer backed by the Resend API.
func NewMailer(apiKey, from string, log zerolog.Logger) *Mailer {
	return NewMailerWithSender(resend.NewClient(apiKey).Emails, from, log)
}

// NewMailerWithSender creates a mailer around an existing sender.
func NewMailerWithSender(s Sender, from string, log zerolog.Logger) *Mailer {
	return &Mailer{
		sender: s,
		from:   from,
		log:    log.With().Str("component", "mailer").Logger(),
	}
}

// SendReport emails the report. Consent and a valid address are required.
// It returns the provider's message id.
func (m *Mailer) SendReport(ctx context.Context, e ReportEmail) (string, error) {
	if !e.GDPRConsent {
		return "", models.InvalidInputf("GDPR consent required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(e.To))
	if err != nil {
		return "", models.InvalidInputf("invalid email address %q", e.To)
	}
	if strings.TrimSpace(e.HTML) == "" {
		return "", models.InvalidInputf("report body is empty")
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{addr.Address},
		Subject: subject(e),
		Html:    e.HTML,
		Headers: map[string]string{
			"X-Entity-Ref-ID": uuid.New().String(),
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "roi_report"},
		},
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	sent, err := m.sender.Send(params)
	if err != nil {
		m.log.Error().Err(err).Str("calculation_id", e.CalculationID).Msg("failed to send report email")
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Info().
		Str("email_id", sent.Id).
		Str("calculation_id", e.CalculationID).
		Msg("report email sent")
	return sent.Id, nil
}

func subject(e ReportEmail) string {
	if e.Company != "" {
		return fmt.Sprintf("Your ROI report for %s (%.1f%% ROI)", e.Company, e.ROIPercentage)
	}
	return fmt.Sprintf("Your ROI report (%.1f%% ROI)", e.ROIPercentage)
}
