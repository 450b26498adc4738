// Package email sends transactional email through Resend.
//
// Bodies are rendered from HTML templates embedded in the binary.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/deppfellow/workshop/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

const fromAddress = "Workshop <onboarding@resend.dev>"

// Sender is the part of the Resend API the client uses.
type Sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Client struct {
	emails Sender
	logger *zerolog.Logger
}

// NewClient builds a client for the configured Resend key. Without a key the
// client is disabled and SendEmail only logs.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	c := &Client{logger: logger}

	if key := cfg.Integration.ResendAPIKey; key != "" {
		c.emails = resend.NewClient(key).Emails
	}

	return c
}

// NewClientWithSender is used when the transport is provided by the caller.
func NewClientWithSender(s Sender, logger *zerolog.Logger) *Client {
	return &Client{emails: s, logger: logger}
}

// Enabled reports whether the client will actually deliver mail.
func (c *Client) Enabled() bool {
	return c.emails != nil
}

// Render executes the named template with data.
func Render(templateName Template, data map[string]string) (string, error) {
	tmpl, err := template.ParseFS(templateFS, fmt.Sprintf("templates/%s.html", templateName))
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse email template %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", templateName)
	}

	return body.String(), nil
}

// SendEmail renders templateName with data and sends it to a single recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data map[string]string) error {
	html, err := Render(templateName, data)
	if err != nil {
		return err
	}

	if !c.Enabled() {
		c.logger.Debug().
			Str("to", to).
			Str("template", string(templateName)).
			Msg("email disabled, skipping send")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    fromAddress,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	if _, err := c.emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
