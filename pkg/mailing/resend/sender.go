// Package resend implements the mailing.Transport interface using the
// Resend API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mailing/pkg/mailing"
)

// Transport delivers mails through Resend.
type Transport struct {
	client *resend.Client
	config Config
}

// New creates a Resend transport.
func New(cfg Config) *Transport {
	return &Transport{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Send implements mailing.Transport.
func (t *Transport) Send(ctx context.Context, email *mailing.Email) error {
	from := email.From
	if from == "" {
		if t.config.SenderName != "" {
			from = fmt.Sprintf("%s <%s>", t.config.SenderName, t.config.SenderEmail)
		} else {
			from = t.config.SenderEmail
		}
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Cc:      email.CC,
		Bcc:     email.BCC,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		Headers: email.Headers,
	}

	if len(email.Attachments) > 0 {
		req.Attachments = convertAttachments(email.Attachments)
	}

	if _, err := t.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}
	return nil
}

func convertAttachments(attachments []mailing.ResolvedAttachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			ContentType: a.MIMEType,
			Content:     a.Content,
		}
	}
	return result
}
