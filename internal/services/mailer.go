package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"vigilant-backend/internal/config"

	"github.com/wneessen/go-mail"
)

// Email is one outbound message. ReplyTo is optional.
type Email struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

// Mailer sends outbound email. Fan-out callers must treat failures as
// best-effort: log and continue, never abort the remaining sends.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// SMTPMailer sends email over SMTP
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// Send delivers a single message
func (m *SMTPMailer) Send(ctx context.Context, msg Email) error {
	mm := mail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := mm.ReplyTo(msg.ReplyTo); err != nil {
			return fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// DirectionsURL builds a Google Maps directions link for a coordinate pair
func DirectionsURL(latitude, longitude float64) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%s,%s",
		strconv.FormatFloat(latitude, 'f', -1, 64),
		strconv.FormatFloat(longitude, 'f', -1, 64))
}

// SOSAlertEmail builds the fan-out message sent to each emergency contact.
// trackURL may be empty when neither coordinates nor a frontend URL are
// available.
func SOSAlertEmail(to, reporterName, reporterEmail, location, description, trackURL string) Email {
	if location == "" {
		location = "N/A"
	}
	body := fmt.Sprintf(
		"Your contact %s (%s) has triggered an SOS!\n\nLocation: %s\nDescription: %s\nTime: %s\n",
		reporterName, reporterEmail, location, description, time.Now().Format(time.RFC1123),
	)
	if trackURL != "" {
		body += fmt.Sprintf("\nTrack live location: %s\n", trackURL)
	}
	return Email{
		To:      to,
		Subject: fmt.Sprintf("SOS Alert from %s (%s)", reporterName, reporterEmail),
		Body:    body,
	}
}

// IncidentReportEmail builds the message sent to contacts selected on a
// regular incident report
func IncidentReportEmail(to, reporterName, reporterEmail, location, description string) Email {
	if location == "" {
		location = "N/A"
	}
	if description == "" {
		description = "No details."
	}
	return Email{
		To:      to,
		Subject: fmt.Sprintf("Incident Reported by %s (%s)", reporterName, reporterEmail),
		Body: fmt.Sprintf(
			"Your contact %s (%s) has reported an incident.\n\nLocation: %s\nDescription: %s\nTime: %s\n",
			reporterName, reporterEmail, location, description, time.Now().Format(time.RFC1123),
		),
	}
}

// HelperAlertEmail builds the targeted message sent to a chosen helper.
// Missing coordinates fall back to "0,0" so rendering never fails.
func HelperAlertEmail(to, helperName, senderName, senderEmail string, latitude, longitude *float64) Email {
	lat, lng := "0", "0"
	if latitude != nil {
		lat = strconv.FormatFloat(*latitude, 'f', -1, 64)
	}
	if longitude != nil {
		lng = strconv.FormatFloat(*longitude, 'f', -1, 64)
	}
	locationURL := fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%s,%s", lat, lng)
	return Email{
		To:      to,
		Subject: "SOS Alert - You were selected as a nearest helper!",
		Body: fmt.Sprintf(
			"Hi %s,\n\n%s (%s) has selected you as the nearest helper.\n\nRequester location: %s\n\nPlease check your app and respond quickly!\n\nThis is an automated alert. Replying to this email will contact the requester directly.\n",
			helperName, senderName, senderEmail, locationURL,
		),
		ReplyTo: senderEmail,
	}
}
