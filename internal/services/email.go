package services

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"github.com/resend/resend-go/v2"

	"github.com/colmward/hamper/internal/config"
	"github.com/colmward/hamper/internal/logging"
)

// Email is a message to be sent by a provider.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailProvider is the delivery backend.
type EmailProvider interface {
	Send(ctx context.Context, email *Email) error
}

// EmailService sends invite links to prospective shoppers.
type EmailService struct {
	provider    EmailProvider
	fromAddress string
	fromName    string
}

// NewEmailService picks a provider from configuration: resend in
// production, smtp for local dev (Mailpit), console otherwise.
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	var provider EmailProvider
	switch cfg.Provider {
	case "resend":
		provider = NewResendProvider(cfg.ResendAPIKey, cfg.FromName, cfg.FromAddress)
	case "smtp":
		provider = NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.FromName, cfg.FromAddress)
	default:
		provider = NewConsoleProvider()
	}

	return &EmailService{
		provider:    provider,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}
}

// SendShopperInvite emails a single-use invite link.
func (s *EmailService) SendShopperInvite(ctx context.Context, to, requesterName, inviteURL string) error {
	html, text := shopperInviteBody(requesterName, inviteURL)
	email := &Email{
		To:      to,
		Subject: fmt.Sprintf("%s invited you to their shopping list", requesterName),
		HTML:    html,
		Text:    text,
	}
	if err := s.provider.Send(ctx, email); err != nil {
		return fmt.Errorf("sending shopper invite: %w", err)
	}
	return nil
}

func shopperInviteBody(requesterName, inviteURL string) (html, text string) {
	html = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>You've been invited</h2>
  <p>%s would like you to help with their shopping list.</p>
  <p>
    <a href="%s" style="display: inline-block; padding: 12px 24px; background: #2d7d46; color: #fff; text-decoration: none; border-radius: 4px;">
      Accept invite
    </a>
  </p>
  <p style="color: #666; font-size: 14px;">Or copy this link: %s</p>
  <p style="color: #666; font-size: 14px;">The link works exactly once. If you weren't expecting this, you can ignore it.</p>
</body>
</html>`, requesterName, inviteURL, inviteURL)

	text = fmt.Sprintf(`You've been invited

%s would like you to help with their shopping list.

Accept here (the link works exactly once):
%s

If you weren't expecting this, you can ignore it.`, requesterName, inviteURL)

	return html, text
}

// ResendProvider sends emails through the Resend API.
type ResendProvider struct {
	client *resend.Client
	from   string
}

func NewResendProvider(apiKey, fromName, fromAddress string) *ResendProvider {
	return &ResendProvider{
		client: resend.NewClient(apiKey),
		from:   fmt.Sprintf("%s <%s>", fromName, fromAddress),
	}
}

func (p *ResendProvider) Send(ctx context.Context, email *Email) error {
	params := &resend.SendEmailRequest{
		From:    p.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	if _, err := p.client.Emails.Send(params); err != nil {
		return fmt.Errorf("sending email via Resend: %w", err)
	}

	logging.Info("Email sent via Resend", logging.Fields{"to": email.To, "subject": email.Subject})
	return nil
}

// SMTPProvider sends emails via plain SMTP (Mailpit in local dev).
type SMTPProvider struct {
	host        string
	port        int
	fromName    string
	fromAddress string
}

func NewSMTPProvider(host string, port int, fromName, fromAddress string) *SMTPProvider {
	return &SMTPProvider{host: host, port: port, fromName: fromName, fromAddress: fromAddress}
}

func (p *SMTPProvider) Send(ctx context.Context, email *Email) error {
	addr := fmt.Sprintf("%s:%d", p.host, p.port)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", p.fromName, p.fromAddress)
	fmt.Fprintf(&buf, "To: %s\r\n", email.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", email.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.HTML)

	if err := smtp.SendMail(addr, nil, p.fromAddress, []string{email.To}, buf.Bytes()); err != nil {
		return fmt.Errorf("sending email via SMTP: %w", err)
	}

	logging.Info("Email sent via SMTP", logging.Fields{"to": email.To, "subject": email.Subject})
	return nil
}

// ConsoleProvider logs emails instead of sending them.
type ConsoleProvider struct{}

func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

func (p *ConsoleProvider) Send(ctx context.Context, email *Email) error {
	logging.Info("Email (console provider)", logging.Fields{
		"to":      email.To,
		"subject": email.Subject,
		"text":    email.Text,
	})
	return nil
}
