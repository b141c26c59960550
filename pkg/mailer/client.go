package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/rikscandle/rikscandle-backend/pkg/config"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

var (
	errAPIKeyRequired = errors.New("sendgrid api key is required")
	errFromRequired   = errors.New("sendgrid default from address is required")
	errLoggerRequired = errors.New("mailer logger is required")
)

// Attachment is a file rider on an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a single transactional email.
type Message struct {
	ToName      string
	ToEmail     string
	Subject     string
	PlainText   string
	HTML        string
	Attachments []Attachment
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client sends email through SendGrid. When disabled it logs the message
// instead of delivering, which keeps local and test environments offline.
type Client struct {
	sg       *sendgrid.Client
	fromName string
	fromAddr string
	disabled bool
	logger   *logger.Logger
}

// NewClient builds the SendGrid mailer from config.
func NewClient(cfg config.SendgridConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	fromAddr := strings.TrimSpace(cfg.DefaultFrom)
	if fromAddr == "" {
		return nil, errFromRequired
	}

	c := &Client{
		fromName: strings.TrimSpace(cfg.DefaultFromName),
		fromAddr: fromAddr,
		disabled: cfg.DisableEmail,
		logger:   logg,
	}

	if c.disabled {
		return c, nil
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	c.sg = sendgrid.NewSendClient(apiKey)
	return c, nil
}

// Send delivers one message. Delivery failures are returned to the caller;
// callers on hot paths fire this from a goroutine so email never blocks the
// order flow.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil {
		return errors.New("mailer not initialized")
	}
	if strings.TrimSpace(msg.ToEmail) == "" {
		return errors.New("recipient email is required")
	}

	if c.disabled {
		c.logger.Info(ctx, fmt.Sprintf("email disabled, skipping send to %s subject=%q", msg.ToEmail, msg.Subject))
		return nil
	}

	from := mail.NewEmail(c.fromName, c.fromAddr)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)

	plain := msg.PlainText
	if plain == "" {
		plain = " "
	}
	html := msg.HTML
	if html == "" {
		html = plain
	}

	sgMail := mail.NewSingleEmail(from, msg.Subject, to, plain, html)
	for _, att := range msg.Attachments {
		if len(att.Data) == 0 {
			continue
		}
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(att.Data))
		a.SetType(att.ContentType)
		a.SetFilename(att.Filename)
		a.SetDisposition("attachment")
		sgMail.AddAttachment(a)
	}

	resp, err := c.sg.SendWithContext(ctx, sgMail)
	if err != nil {
		c.logger.Error(ctx, "sendgrid send failed", err)
		return err
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
		c.logger.Error(ctx, "sendgrid send rejected", err)
		return err
	}

	return nil
}
